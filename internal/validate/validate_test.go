package validate

import "testing"

// validForm returns a form that passes validation.
func validForm() map[string]string {
	return map[string]string{
		"business_legal_name": "Acme Holdings LLC",
		"industry":            "Retail",
		"legal_entity":        "LLC",
		"business_start_date": "2015-06-01",
		"ein":                 "12-3456789",
		"company_address1":    "1 Main St",
		"company_city":        "Springfield",
		"company_state":       "IL",
		"company_zip":         "62701",
		"owner_0_first":       "Jane",
		"owner_0_last":        "Doe",
		"owner_0_pct":         "100",
		"owner_0_dob":         "1980-01-01",
		"owner_0_ssn":         "123-45-6789",
		"owner_0_email":       "jane@acme.com",
		"owner_0_mobile":      "(555) 123-4567",
		"own_real_estate":     "No",
		"esign_consent":       "Yes",
		"has_owner_1":         "No",
	}
}

func TestValidFormPasses(t *testing.T) {
	if errs := Fields(validForm()); len(errs) != 0 {
		t.Fatalf("expected no errors, got %v", errs)
	}
}

func TestRequiredFields(t *testing.T) {
	for _, field := range []string{
		"business_legal_name", "ein", "owner_0_ssn", "esign_consent", "own_real_estate",
	} {
		t.Run(field, func(t *testing.T) {
			form := validForm()
			delete(form, field)
			errs := Fields(form)
			if errs[field] != "Required" {
				t.Errorf("expected %q to be required, got %v", field, errs)
			}
		})
	}
}

func TestPatternValidation(t *testing.T) {
	cases := []struct {
		name  string
		field string
		value string
		bad   bool
	}{
		{"valid ein", "ein", "12-3456789", false},
		{"ein leading zeros", "ein", "00-1234567", true},
		{"ein short", "ein", "1-2345678", true},
		{"valid ssn", "ssn", "123-45-6789", false},
		{"ssn area 000", "ssn", "000-45-6789", true},
		{"ssn area 666", "ssn", "666-45-6789", true},
		{"ssn area 9xx", "ssn", "912-45-6789", true},
		{"ssn group 00", "ssn", "123-00-6789", true},
		{"ssn serial 0000", "ssn", "123-45-0000", true},
		{"valid phone", "phone", "555-123-4567", false},
		{"phone with country code", "phone", "+1 (555) 123-4567", false},
		{"phone dots", "phone", "555.123.4567", false},
		{"phone short", "phone", "123-4567", true},
		{"valid zip", "zip", "62701", false},
		{"valid zip+4", "zip", "62701-1234", false},
		{"zip short", "zip", "6270", true},
		{"valid state", "state", "IL", false},
		{"state long", "state", "Ill", true},
	}

	fieldNames := map[string]string{
		"ein":   "ein",
		"ssn":   "owner_0_ssn",
		"phone": "owner_0_mobile",
		"zip":   "company_zip",
		"state": "company_state",
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			form := validForm()
			form[fieldNames[tc.field]] = tc.value
			errs := Fields(form)
			_, failed := errs[fieldNames[tc.field]]
			if failed != tc.bad {
				t.Errorf("%s = %q: failed=%v, want %v (errs: %v)", tc.field, tc.value, failed, tc.bad, errs)
			}
		})
	}
}

func TestFICO(t *testing.T) {
	cases := []struct {
		value string
		bad   bool
	}{
		{"", false},
		{"300", false},
		{"850", false},
		{"720", false},
		{"299", true},
		{"851", true},
		{"85", true},
		{"abc", true},
	}

	for _, tc := range cases {
		form := validForm()
		form["owner_0_fico"] = tc.value
		errs := Fields(form)
		_, failed := errs["owner_0_fico"]
		if failed != tc.bad {
			t.Errorf("fico %q: failed=%v, want %v", tc.value, failed, tc.bad)
		}
	}
}

func TestSecondOwnerConditional(t *testing.T) {
	form := validForm()
	form["has_owner_1"] = "Yes"

	errs := Fields(form)
	for _, field := range []string{"owner_1_first", "owner_1_ssn", "owner_1_zip"} {
		if errs[field] != "Required" {
			t.Errorf("expected %q required when has_owner_1=Yes, got %v", field, errs[field])
		}
	}

	form["owner_1_first"] = "John"
	form["owner_1_last"] = "Doe"
	form["owner_1_pct"] = "50"
	form["owner_1_dob"] = "1985-01-01"
	form["owner_1_ssn"] = "000-11-2222" // invalid area
	form["owner_1_email"] = "john@acme.com"
	form["owner_1_mobile"] = "555-765-4321"
	form["owner_1_addr1"] = "2 Oak Ave"
	form["owner_1_city"] = "Springfield"
	form["owner_1_state"] = "IL"
	form["owner_1_zip"] = "62702"

	errs = Fields(form)
	if errs["owner_1_ssn"] == "" {
		t.Errorf("expected owner_1_ssn pattern error, got %v", errs)
	}
}

func TestRealEstateConditional(t *testing.T) {
	form := validForm()
	form["own_real_estate"] = "Yes"

	errs := Fields(form)
	if errs["residence_tenure"] != "Required" || errs["business_location_tenure"] != "Required" {
		t.Errorf("expected tenure fields required, got %v", errs)
	}

	form["residence_tenure"] = "Own"
	form["business_location_tenure"] = "Rent"
	if errs := Fields(form); len(errs) != 0 {
		t.Errorf("expected no errors, got %v", errs)
	}
}

func TestConsentMustBeYes(t *testing.T) {
	form := validForm()
	form["esign_consent"] = "No"

	errs := Fields(form)
	if errs["esign_consent"] != "Consent is required" {
		t.Errorf("expected consent error, got %v", errs)
	}
}
