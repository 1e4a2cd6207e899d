// internal/intake/fingerprint.go
package intake

import "fmt"

// Fingerprint derives the dedupe key for an agent submission. An agent
// reference pins identity exactly; otherwise the customer contact plus
// postcode stands in, preferring email over phone.
func Fingerprint(companyID, agentRef, email, phone, postcode string) string {
	if agentRef != "" {
		return fmt.Sprintf("ref:%s:%s", companyID, agentRef)
	}
	contact := email
	if contact == "" {
		contact = phone
	}
	return fmt.Sprintf("contact:%s:%s:%s", companyID, contact, postcode)
}
