// Package validate checks loan-application form fields: required-field
// presence, conditional sections (second owner, real estate) and the US
// identifier patterns the intake form promises to enforce.
package validate

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	// SSN: area not 000/666/9xx, group not 00, serial not 0000.
	ssnRe = regexp.MustCompile(`^(?:00[1-9]|0[1-9]\d|[1-578]\d\d|6[0-57-9]\d|66[0-57-9])-(?:0[1-9]|[1-9]\d)-(?:000[1-9]|00[1-9]\d|0[1-9]\d\d|[1-9]\d{3})$`)
	// EIN: two-digit prefix other than 00, then seven digits.
	einRe   = regexp.MustCompile(`^(?:0[1-9]|[1-9]\d)-\d{7}$`)
	phoneRe = regexp.MustCompile(`^\+?1?\s*\(?\d{3}\)?[\s.-]*\d{3}[\s.-]*\d{4}$`)
	zipRe   = regexp.MustCompile(`^\d{5}(-\d{4})?$`)
	stateRe = regexp.MustCompile(`^[A-Za-z]{2}$`)
	ficoRe  = regexp.MustCompile(`^\d{3}$`)
)

// baseRequired are the fields every application must carry.
var baseRequired = []string{
	"business_legal_name", "industry", "legal_entity", "business_start_date", "ein",
	"company_address1", "company_city", "company_state", "company_zip",
	"owner_0_first", "owner_0_last", "owner_0_pct", "owner_0_dob", "owner_0_ssn",
	"owner_0_email", "owner_0_mobile",
	"own_real_estate",
	"esign_consent",
}

// owner1Required applies when a second owner is declared.
var owner1Required = []string{
	"owner_1_first", "owner_1_last", "owner_1_pct", "owner_1_dob", "owner_1_ssn",
	"owner_1_email", "owner_1_mobile",
	"owner_1_addr1", "owner_1_city", "owner_1_state", "owner_1_zip",
}

// Fields validates a submitted form and returns a field→message map.
// An empty map means the form is acceptable.
func Fields(form map[string]string) map[string]string {
	errs := make(map[string]string)

	for _, k := range baseRequired {
		if form[k] == "" {
			errs[k] = "Required"
		}
	}

	if form["own_real_estate"] == "Yes" {
		for _, k := range []string{"residence_tenure", "business_location_tenure"} {
			if form[k] == "" {
				errs[k] = "Required"
			}
		}
	}

	hasOwner1 := HasSecondOwner(form)
	if hasOwner1 {
		for _, k := range owner1Required {
			if form[k] == "" {
				errs[k] = "Required"
			}
		}
	}

	if v := form["ein"]; v != "" && !einRe.MatchString(v) {
		errs["ein"] = "Invalid EIN (##-#######)"
	}
	if v := form["owner_0_ssn"]; v != "" && !ssnRe.MatchString(v) {
		errs["owner_0_ssn"] = "Invalid SSN (###-##-####)"
	}
	if v := form["owner_0_mobile"]; v != "" && !phoneRe.MatchString(v) {
		errs["owner_0_mobile"] = "Invalid phone number"
	}
	if v := form["company_zip"]; v != "" && !zipRe.MatchString(v) {
		errs["company_zip"] = "Invalid ZIP"
	}
	if v := form["company_state"]; v != "" && !stateRe.MatchString(v) {
		errs["company_state"] = "Use 2-letter state"
	}
	if !validFICO(form["owner_0_fico"]) {
		errs["owner_0_fico"] = "FICO must be 300-850"
	}

	if hasOwner1 {
		if !validFICO(form["owner_1_fico"]) {
			errs["owner_1_fico"] = "FICO must be 300-850"
		}
		if v := form["owner_1_ssn"]; v != "" && !ssnRe.MatchString(v) {
			errs["owner_1_ssn"] = "Invalid SSN (###-##-####)"
		}
		if v := form["owner_1_mobile"]; v != "" && !phoneRe.MatchString(v) {
			errs["owner_1_mobile"] = "Invalid phone number"
		}
		if v := form["owner_1_zip"]; v != "" && !zipRe.MatchString(v) {
			errs["owner_1_zip"] = "Invalid ZIP"
		}
		if v := form["owner_1_state"]; v != "" && !stateRe.MatchString(v) {
			errs["owner_1_state"] = "Use 2-letter state"
		}
	}

	// Consent must be an explicit "Yes", not merely present.
	if v := form["esign_consent"]; v != "" && v != "Yes" {
		errs["esign_consent"] = "Consent is required"
	}

	return errs
}

// HasSecondOwner reports whether the form declares a second owner.
// Absent or blank has_owner_1 means "No".
func HasSecondOwner(form map[string]string) bool {
	return strings.TrimSpace(form["has_owner_1"]) == "Yes"
}

// validFICO accepts blank or a score of 300-850.
func validFICO(v string) bool {
	v = strings.TrimSpace(v)
	if v == "" {
		return true
	}
	if !ficoRe.MatchString(v) {
		return false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return false
	}
	return n >= 300 && n <= 850
}
