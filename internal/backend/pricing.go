package backend

import (
	"fmt"
	"strings"
)

// CostEstimate is the estimated USD cost of one completion call. Known is
// false when the backend omitted usage metadata or the model has no entry
// in the price table; an unknown cost is displayed as such, not as zero.
type CostEstimate struct {
	USD   float64
	Known bool
}

func (c CostEstimate) String() string {
	if !c.Known {
		return "unknown"
	}
	return fmt.Sprintf("$%.6f", c.USD)
}

// modelPricing holds per-token USD prices. Prices are per token, not per
// million tokens.
type modelPricing struct {
	inputPerToken  float64
	outputPerToken float64
}

// pricingTable covers the models qq is commonly pointed at. Lookup falls
// back to the longest matching prefix so dated model names (for example
// gpt-4o-2024-08-06) resolve to their family entry.
var pricingTable = map[string]modelPricing{
	"gpt-4o":                   {2.50 / 1e6, 10.00 / 1e6},
	"gpt-4o-mini":              {0.15 / 1e6, 0.60 / 1e6},
	"gpt-4.1":                  {2.00 / 1e6, 8.00 / 1e6},
	"gpt-4.1-mini":             {0.40 / 1e6, 1.60 / 1e6},
	"gpt-4-turbo":              {10.00 / 1e6, 30.00 / 1e6},
	"gpt-3.5-turbo":            {0.50 / 1e6, 1.50 / 1e6},
	"o3-mini":                  {1.10 / 1e6, 4.40 / 1e6},
	"claude-3-5-sonnet":        {3.00 / 1e6, 15.00 / 1e6},
	"claude-3-5-haiku":         {0.80 / 1e6, 4.00 / 1e6},
	"claude-3-sonnet-20240229": {3.00 / 1e6, 15.00 / 1e6},
	"claude-3-haiku-20240307":  {0.25 / 1e6, 1.25 / 1e6},
}

func lookupPricing(model string) (modelPricing, bool) {
	if p, ok := pricingTable[model]; ok {
		return p, true
	}
	best := ""
	for name := range pricingTable {
		if strings.HasPrefix(model, name) && len(name) > len(best) {
			best = name
		}
	}
	if best == "" {
		return modelPricing{}, false
	}
	return pricingTable[best], true
}

// EstimateCost computes the USD cost of a call from the backend's reported
// token usage and the static price table.
func EstimateCost(model string, usage *Usage) CostEstimate {
	if usage == nil {
		return CostEstimate{}
	}
	pricing, ok := lookupPricing(model)
	if !ok {
		return CostEstimate{}
	}
	usd := float64(usage.PromptTokens)*pricing.inputPerToken +
		float64(usage.CompletionTokens)*pricing.outputPerToken
	return CostEstimate{USD: usd, Known: true}
}
