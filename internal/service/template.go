// internal/service/template.go
package service

import (
	"strings"
)

// RenderTemplate substitutes {placeholder} tokens in message templates.
func RenderTemplate(template string, data map[string]string) string {
	result := template
	for k, v := range data {
		result = strings.ReplaceAll(result, "{"+k+"}", v)
	}
	return result
}

const (
	defaultFollowUpSubject = "Follow up from SmartLead CRM"

	defaultFollowUpBody = `Hello {first_name},

Thank you for your interest. We wanted to follow up and see if you have any questions we can help with.

Best regards,
The SmartLead Team`
)

// DefaultFollowUpContent is used when a send is requested without explicit
// subject/body.
func DefaultFollowUpContent(firstName string) EmailContent {
	return EmailContent{
		Subject: defaultFollowUpSubject,
		Body:    RenderTemplate(defaultFollowUpBody, map[string]string{"first_name": firstName}),
	}
}
