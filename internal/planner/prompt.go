package planner

import (
	"fmt"
	"strings"

	"github.com/gapmap-ai/gapmap-backend/internal/llm"
	"github.com/gapmap-ai/gapmap-backend/internal/projects/domain"
)

const notSpecified = "Not specified"

const planUserPrompt = "Generate comprehensive business details for my project. Ensure the response is complete valid JSON."

// BuildPlanPrompt returns the system and user messages for a plan generation
// request. Unset project attributes render as "Not specified".
func BuildPlanPrompt(p *domain.Project) []llm.Message {
	var b strings.Builder
	fmt.Fprintf(&b, "You are GapMap AI, a specialized business advisor assistant.\n")
	fmt.Fprintf(&b, "Your task is to generate comprehensive business analysis and planning for the project: %q.\n\n", p.Title)
	b.WriteString(`CRITICAL REQUIREMENTS:
- Always refer to the business as "Your business" instead of creating fictional names
- Do NOT use any markdown formatting in your JSON response (no **, *, #, etc.)
- Provide explicit links to competitor websites and market data sources for verification
- Use simple, non-technical language that anyone can understand
- Be specific and actionable in all recommendations
- For growth predictions, provide realistic monthly/yearly growth percentages with supporting data
- ENSURE your response is COMPLETE and VALID JSON that matches the exact schema provided
- Do NOT exceed the token limit - if needed, prioritize completeness over verbosity

Follow the JSON schema provided exactly. Provide detailed, realistic, and actionable information for each section.
Include verified citation links for data sources, especially for competitor information, market data, and industry insights.

Project Details:
`)
	fmt.Fprintf(&b, "Description: %s\n", orNotSpecified(&p.Description))
	fmt.Fprintf(&b, "Investment Required: %s\n", orNotSpecified(p.InvestmentRequired))
	fmt.Fprintf(&b, "Time Commitment: %s\n", orNotSpecified(p.TimeCommitment))
	fmt.Fprintf(&b, "Risk Level: %s\n", orNotSpecified(p.RiskLevel))
	fmt.Fprintf(&b, "Potential Returns: %s", orNotSpecified(p.PotentialReturns))

	return []llm.Message{
		{Role: llm.RoleSystem, Content: b.String()},
		{Role: llm.RoleUser, Content: planUserPrompt},
	}
}

func orNotSpecified(s *string) string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return notSpecified
	}
	return *s
}

// ProfileForm is the questionnaire a user fills in to get recommendations.
type ProfileForm struct {
	Location           string `json:"location" binding:"required"`
	AgeRange           string `json:"ageRange" binding:"required"`
	Skills             string `json:"skills" binding:"required"`
	Education          string `json:"education" binding:"required"`
	BusinessType       string `json:"businessType" binding:"required,oneof=online offline both"`
	Industry           string `json:"industry" binding:"required"`
	TimeAvailability   int    `json:"timeAvailability" binding:"required,min=5,max=60"`
	SoloEntrepreneur   bool   `json:"soloEntrepreneur"`
	HiringEmployees    bool   `json:"hiringEmployees"`
	OpenToPartnerships bool   `json:"openToPartnerships"`
	InvestmentBudget   string `json:"investmentBudget" binding:"required"`
	RiskTolerance      int    `json:"riskTolerance" binding:"required,min=1,max=5"`
	BusinessGoal       string `json:"businessGoal" binding:"required,oneof=income growth passion exit"`
	AdditionalInfo     string `json:"additionalInfo"`
}

// BuildRecommendationPrompt renders the profile form into a single user
// message asking for ten ranked opportunities.
func BuildRecommendationPrompt(f ProfileForm) []llm.Message {
	var b strings.Builder
	b.WriteString(`Based on the following user profile, generate 10 business recommendations.
Each recommendation should include:
1. Title
2. Description
3. Investment Required (as a string range)
4. Time Commitment (hours per week)
5. Risk Level (Low, Medium, High)
6. Potential Returns (as a string)
7. Match Score (a number between 1-100)

User Profile:
`)
	fmt.Fprintf(&b, "- Location: %s\n", f.Location)
	fmt.Fprintf(&b, "- Age Range: %s\n", f.AgeRange)
	fmt.Fprintf(&b, "- Skills & Experience: %s\n", f.Skills)
	fmt.Fprintf(&b, "- Education: %s\n", f.Education)
	fmt.Fprintf(&b, "- Business Type Preference: %s\n", f.BusinessType)
	fmt.Fprintf(&b, "- Industry Preference: %s\n", f.Industry)
	fmt.Fprintf(&b, "- Time Availability: %d hours/week\n", f.TimeAvailability)
	fmt.Fprintf(&b, "- Solo Entrepreneur: %s\n", yesNo(f.SoloEntrepreneur))
	fmt.Fprintf(&b, "- Willing to Hire Employees: %s\n", yesNo(f.HiringEmployees))
	fmt.Fprintf(&b, "- Open to Partnerships: %s\n", yesNo(f.OpenToPartnerships))
	fmt.Fprintf(&b, "- Investment Budget: %s\n", f.InvestmentBudget)
	fmt.Fprintf(&b, "- Risk Tolerance: %d/5\n", f.RiskTolerance)
	fmt.Fprintf(&b, "- Business Goal: %s\n", f.BusinessGoal)
	fmt.Fprintf(&b, "- Additional Info: %s\n\n", orNotSpecified(&f.AdditionalInfo))
	b.WriteString(`Return the recommendations as a JSON array of objects with the fields
id, title, description, investmentRequired, timeCommitment, riskLevel,
potentialReturns and matchScore. Only return the JSON array, nothing else.`)

	return []llm.Message{{Role: llm.RoleUser, Content: b.String()}}
}

func yesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}

// BuildChatSystemPrompt returns the advisor system prompt. A nil project
// yields the generic prompt with no project section.
func BuildChatSystemPrompt(projectID string, p *domain.Project) string {
	title := "your business project"
	if p != nil {
		title = p.Title
	}
	if projectID == "" {
		projectID = "unknown"
	}

	var b strings.Builder
	b.WriteString("# GapMap AI - Business Advisor Assistant\n\n")
	fmt.Fprintf(&b, "You are GapMap AI, a specialized business advisor assistant helping the user with their business project (ID: %s) titled %q.\n", projectID, title)
	if p != nil {
		b.WriteString(projectContext(p))
	}
	b.WriteString(`
## Your Role as a Business Advisor
### Expertise Areas
- Business planning and strategic development
- Market analysis and competitive landscape assessment
- Financial modeling and investment planning
- Operational optimization and scaling strategies
- Marketing and customer acquisition approaches

### Communication Guidelines
- Format responses with clear markdown headings and bullet points for readability
- Be encouraging but realistic about business challenges and timelines
- Provide specific, actionable advice rather than generic statements
- When discussing financial matters, be specific with numbers and realistic projections
- If asked about something outside your expertise, acknowledge limitations and suggest professional consultation
- Use data from the project context to personalize your advice

### Conversation Style
- Professional but conversational tone
- Focus on practical, implementable advice
- Break down complex business concepts into understandable parts
- Refer to specific details from the project when relevant`)
	return b.String()
}

func projectContext(p *domain.Project) string {
	d := p.Details()

	var b strings.Builder
	fmt.Fprintf(&b, "\n# Project Details for %q\n\n## Basic Information\n", p.Title)
	fmt.Fprintf(&b, "- Title: %s\n", p.Title)
	fmt.Fprintf(&b, "- Description: %s\n", orNotSpecified(&p.Description))
	fmt.Fprintf(&b, "- Status: %s\n", p.Status)
	optLine(&b, "Investment Required", p.InvestmentRequired)
	optLine(&b, "Time Commitment", p.TimeCommitment)
	optLine(&b, "Risk Level", p.RiskLevel)
	optLine(&b, "Potential Returns", p.PotentialReturns)

	b.WriteString("\n## Market Analysis\n")
	fmt.Fprintf(&b, "- Market Size: %s\n", orNotSpecified(p.MarketSize))
	fmt.Fprintf(&b, "- Target Audience: %s\n", orNotSpecified(p.TargetAudience))
	optLine(&b, "Brand Positioning", p.BrandPositioning)

	b.WriteString("\n## Financial Information\n")
	if p.InitialInvestment == nil && p.BreakEventPoint == nil && p.ProfitMargin == nil {
		b.WriteString("- Financial projections not yet specified\n")
	}
	if p.InitialInvestment != nil {
		fmt.Fprintf(&b, "- Initial Investment: %g\n", *p.InitialInvestment)
	}
	if p.BreakEventPoint != nil {
		fmt.Fprintf(&b, "- Break Even Point: %d months\n", *p.BreakEventPoint)
	}
	if p.ProfitMargin != nil {
		fmt.Fprintf(&b, "- Profit Margin: %g%%\n", *p.ProfitMargin)
	}

	if len(d.RevenueStreams) > 0 {
		b.WriteString("\n## Revenue Streams\n")
		for _, s := range d.RevenueStreams {
			fmt.Fprintf(&b, "- %s: %g%%\n", s.Stream, s.Percentage)
		}
	}

	if op := d.OperationalRequirements; op != nil {
		b.WriteString("\n## Operational Requirements\n")
		if len(op.StaffingNeeds) > 0 {
			b.WriteString("\n### Staffing Needs\n")
			for _, s := range op.StaffingNeeds {
				fmt.Fprintf(&b, "- %s: %s\n", s.Period, s.Description)
			}
		}
		if len(op.Equipment) > 0 {
			b.WriteString("\n### Equipment\n")
			for _, e := range op.Equipment {
				fmt.Fprintf(&b, "- %s: %s\n", e.Item, e.Cost)
			}
		}
		if loc := op.LocationRequirements; loc.Description != "" || loc.EstimatedMonthlyRent != "" {
			b.WriteString("\n### Location Requirements\n")
			fmt.Fprintf(&b, "- %s\n- Estimated Monthly Rent: %s\n", loc.Description, loc.EstimatedMonthlyRent)
		}
	}

	hasStructure := p.BusinessStructure != nil && *p.BusinessStructure != ""
	if hasStructure || len(d.RequiredPermitsLicenses) > 0 || len(d.InsuranceNeeds) > 0 {
		b.WriteString("\n## Legal and Business Structure\n")
		optLine(&b, "Business Structure", p.BusinessStructure)
		bulletSection(&b, "### Required Permits & Licenses", d.RequiredPermitsLicenses)
		bulletSection(&b, "### Insurance Needs", d.InsuranceNeeds)
	}

	if len(d.DigitalMarketing) > 0 || len(d.PhysicalMarketing) > 0 {
		b.WriteString("\n## Marketing Strategy\n")
		bulletSection(&b, "### Digital Marketing", d.DigitalMarketing)
		bulletSection(&b, "### Physical Marketing", d.PhysicalMarketing)
	}

	if tl := d.ImplementationTimeline; tl != nil && len(tl.Timeline) > 0 {
		b.WriteString("\n## Implementation Timeline\n")
		for _, ph := range tl.Timeline {
			fmt.Fprintf(&b, "- %s (%s): %s\n", ph.Phase, ph.Period, strings.Join(ph.Tasks, "; "))
		}
	}

	bulletSection(&b, "## Growth Opportunities", d.GrowthOpportunities)

	if p.ExecutiveSummary != nil && *p.ExecutiveSummary != "" {
		fmt.Fprintf(&b, "\n## Executive Summary\n%s\n", *p.ExecutiveSummary)
	}
	return b.String()
}

func optLine(b *strings.Builder, label string, v *string) {
	if v != nil && *v != "" {
		fmt.Fprintf(b, "- %s: %s\n", label, *v)
	}
}

func bulletSection(b *strings.Builder, heading string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "\n%s\n", heading)
	for _, it := range items {
		fmt.Fprintf(b, "- %s\n", it)
	}
}
