package planner

import "sort"

// Schema helpers. Every object lists all of its properties as required, which
// is what the upstream structured-output mode expects.

func obj(props map[string]any, desc ...string) map[string]any {
	s := map[string]any{
		"type":       "object",
		"properties": props,
		"required":   sortedKeys(props),
	}
	describe(s, desc)
	return s
}

func arr(items map[string]any, desc ...string) map[string]any {
	s := map[string]any{"type": "array", "items": items}
	describe(s, desc)
	return s
}

func str(desc ...string) map[string]any {
	s := map[string]any{"type": "string"}
	describe(s, desc)
	return s
}

func num(desc ...string) map[string]any {
	s := map[string]any{"type": "number"}
	describe(s, desc)
	return s
}

func strList(desc ...string) map[string]any {
	return arr(str(), desc...)
}

func describe(s map[string]any, desc []string) {
	if len(desc) > 0 && desc[0] != "" {
		s["description"] = desc[0]
	}
}

// PlanSchemaName is the json_schema name sent with plan generation requests.
const PlanSchemaName = "business_plan_analysis"

// PlanSchema is the structured-output contract for business plan generation.
func PlanSchema() map[string]any {
	tamEntry := func(what string) map[string]any {
		return obj(map[string]any{
			"value":       str(what + " market size value"),
			"description": str("Simple explanation of what this means for this business"),
		})
	}

	return obj(map[string]any{
		"market_analysis": obj(map[string]any{
			"market_size":       str("Simple explanation of how big the market is with specific numbers and sources"),
			"target_audience":   str("Who will buy this product, explained in simple terms"),
			"customer_personas": str("3-4 types of ideal customers with their problems and demographics, easy to understand"),
			"pain_points":       str("Main problems your customers face that your business solves"),
			"demand_forecast": obj(map[string]any{
				"summary": str("Simple explanation of market demand trends"),
				"growth_predictions": arr(obj(map[string]any{
					"period":      str("Time period like 'Month 6', 'Year 1'"),
					"users":       num("Predicted number of users/customers"),
					"revenue":     num("Predicted revenue in dollars"),
					"growth_rate": num("Growth percentage"),
				}), "Monthly/yearly growth predictions with specific numbers"),
				"key_drivers": strList("Main factors that will drive growth, explained simply"),
			}),
			"tam_sam_som": obj(map[string]any{
				"tam": tamEntry("Total"),
				"sam": tamEntry("Serviceable"),
				"som": tamEntry("Obtainable"),
			}),
			"market_statistics": arr(obj(map[string]any{
				"metric": str(),
				"value":  str(),
				"source": str(),
				"link":   str(),
			}), "Key market statistics with verified sources"),
		}),
		"financial_projections": obj(map[string]any{
			"initial_investment": num("How much money needed to start, in dollars"),
			"break_even_point":   num("How many months until profitable"),
			"profit_margin":      num("Percentage of profit on each sale"),
			"revenue_streams": arr(obj(map[string]any{
				"stream":     str("How money is made"),
				"percentage": num("What percent of total income"),
			})),
		}),
		"growth_opportunities": strList("Ways to grow the business bigger, explained simply"),
		"operational_requirements": obj(map[string]any{
			"staffingNeeds": arr(obj(map[string]any{
				"period":      str(),
				"description": str(),
			})),
			"equipment": arr(obj(map[string]any{
				"item": str(),
				"cost": str(),
			})),
			"locationRequirements": obj(map[string]any{
				"description":          str(),
				"estimatedMonthlyRent": str(),
			}),
		}),
		"executive_summary": str("Short overview of the whole business plan in plain language"),
		"business_model":    str("How the business makes money, explained simply"),
		"risk_analysis": obj(map[string]any{
			"main_risks":       strList(),
			"risk_mitigations": strList(),
		}),
		"implementation_timeline": obj(map[string]any{
			"timeline": arr(obj(map[string]any{
				"period": str(),
				"phase":  str(),
				"tasks":  strList(),
			})),
		}),
		"marketing_strategy": obj(map[string]any{
			"brand_positioning":  str(),
			"digital_marketing":  strList(),
			"physical_marketing": strList(),
		}),
		"competitive_analysis": obj(map[string]any{
			"key_competitors": str(),
			"swot_analysis": obj(map[string]any{
				"strengths":     strList(),
				"weaknesses":    strList(),
				"opportunities": strList(),
				"threats":       strList(),
			}),
			"differentiation": obj(map[string]any{
				"comparison_table": arr(obj(map[string]any{
					"feature":       str(),
					"your_business": str(),
					"competitors":   str(),
				})),
			}),
			"competitor_links": arr(obj(map[string]any{
				"name":        str(),
				"website":     str(),
				"description": str(),
			})),
		}),
		"legal_regulatory": obj(map[string]any{
			"business_structure":        str(),
			"required_permits_licenses": strList(),
			"insurance_needs":           strList(),
		}),
		"citations": arr(obj(map[string]any{
			"title":       str(),
			"url":         str(),
			"description": str(),
		})),
		"resources": obj(map[string]any{
			"learning_materials": arr(obj(map[string]any{
				"title":       str(),
				"description": str(),
				"url":         str(),
				"type":        str("article, video, course or book"),
			})),
			"tools": arr(obj(map[string]any{
				"name":        str(),
				"description": str(),
				"url":         str(),
				"category":    str(),
			})),
		}),
	})
}

// RecommendationSchemaName is the json_schema name sent with recommendation
// requests.
const RecommendationSchemaName = "business_recommendations"

// RecommendationSchema describes the ranked opportunity list.
func RecommendationSchema() map[string]any {
	item := obj(map[string]any{
		"id":                 num(),
		"title":              str(),
		"description":        str(),
		"investmentRequired": str(),
		"timeCommitment":     str(),
		"riskLevel":          str(),
		"potentialReturns":   str(),
		"matchScore":         num(),
	})
	props := item["properties"].(map[string]any)
	props["matchScore"].(map[string]any)["minimum"] = 1
	props["matchScore"].(map[string]any)["maximum"] = 100
	return arr(item)
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
