package model

import (
	"fmt"
	"strings"
)

// Summary formats the application as plain text for the notification email.
func (a *Application) Summary() string {
	var sb strings.Builder

	sb.WriteString("================================\n")
	sb.WriteString("NEW BUSINESS LOAN APPLICATION\n")
	sb.WriteString("================================\n\n")

	sb.WriteString(fmt.Sprintf("Business: %s\n", a.BusinessLegalName))
	sb.WriteString(fmt.Sprintf("Industry: %s\n", valueOrDefault(a.Industry)))
	sb.WriteString(fmt.Sprintf("Requested amount: %.2f\n", a.LoanAmount))
	sb.WriteString(fmt.Sprintf("EIN: %s\n", valueOrDefault(a.EIN)))
	sb.WriteString(fmt.Sprintf("Phone: %s\n", valueOrDefault(a.BusinessPhone)))
	sb.WriteString(fmt.Sprintf("Website: %s\n", valueOrDefault(a.CompanyWebsite)))
	sb.WriteString("\n")

	sb.WriteString("OWNERS:\n")
	if len(a.Owners) == 0 {
		sb.WriteString("- Not provided\n")
	}
	for _, owner := range a.Owners {
		sb.WriteString(fmt.Sprintf("- %s\n", owner))
	}
	sb.WriteString("\n")

	sb.WriteString(fmt.Sprintf("Submitted fields: %d\n", len(a.Payload)))
	sb.WriteString("================================\n")

	return sb.String()
}

func valueOrDefault(s string) string {
	if s == "" {
		return "Not provided"
	}
	return s
}
