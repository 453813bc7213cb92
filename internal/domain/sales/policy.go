package sales

import (
	"fmt"

	"github.com/google/cel-go/cel"

	"tillbook/internal/core/apperror"
)

// DefaultPolicyRules are always enforced, ahead of any configured rules.
var DefaultPolicyRules = []string{
	"discount <= subtotal",
	"total >= 0.0",
}

// Policy evaluates configurable acceptance rules against a sale before
// it is persisted. Rules are CEL expressions over the sale header, e.g.
// "discount <= subtotal * 0.5" or "payment_method != 'check'".
type Policy struct {
	rules []compiledRule
}

type compiledRule struct {
	expr    string
	program cel.Program
}

// NewPolicy compiles the default rules plus the given extra rules.
func NewPolicy(extraRules []string) (*Policy, error) {
	env, err := cel.NewEnv(
		cel.Variable("subtotal", cel.DoubleType),
		cel.Variable("tax", cel.DoubleType),
		cel.Variable("discount", cel.DoubleType),
		cel.Variable("total", cel.DoubleType),
		cel.Variable("amount_paid", cel.DoubleType),
		cel.Variable("item_count", cel.IntType),
		cel.Variable("payment_method", cel.StringType),
	)
	if err != nil {
		return nil, fmt.Errorf("create policy env: %w", err)
	}

	exprs := make([]string, 0, len(DefaultPolicyRules)+len(extraRules))
	exprs = append(exprs, DefaultPolicyRules...)
	exprs = append(exprs, extraRules...)

	p := &Policy{rules: make([]compiledRule, 0, len(exprs))}
	for _, expr := range exprs {
		ast, issues := env.Compile(expr)
		if issues != nil && issues.Err() != nil {
			return nil, fmt.Errorf("compile policy rule %q: %w", expr, issues.Err())
		}
		if ast.OutputType() != cel.BoolType {
			return nil, fmt.Errorf("policy rule %q must evaluate to bool", expr)
		}
		program, err := env.Program(ast)
		if err != nil {
			return nil, fmt.Errorf("build policy rule %q: %w", expr, err)
		}
		p.rules = append(p.rules, compiledRule{expr: expr, program: program})
	}

	return p, nil
}

// Check evaluates every rule; the first failing rule rejects the sale.
func (p *Policy) Check(sale *Sale) error {
	vars := map[string]any{
		"subtotal":       sale.Subtotal.InexactFloat64(),
		"tax":            sale.TaxAmount.InexactFloat64(),
		"discount":       sale.DiscountAmount.InexactFloat64(),
		"total":          sale.TotalAmount.InexactFloat64(),
		"amount_paid":    sale.AmountPaid.InexactFloat64(),
		"item_count":     int64(len(sale.Items)),
		"payment_method": string(sale.PaymentMethod),
	}

	for _, rule := range p.rules {
		out, _, err := rule.program.Eval(vars)
		if err != nil {
			return apperror.NewInternal(fmt.Errorf("evaluate policy rule %q: %w", rule.expr, err))
		}
		ok, isBool := out.Value().(bool)
		if !isBool {
			return apperror.NewInternal(fmt.Errorf("policy rule %q returned non-bool", rule.expr))
		}
		if !ok {
			return apperror.NewValidation("sale violates acceptance policy").
				WithDetail("rule", rule.expr)
		}
	}

	return nil
}
