package validators

import "testing"

func TestNormalizePhone(t *testing.T) {
	cases := map[string]string{
		"(11) 98888-7777":   "11988887777",
		" +55 11 9888 7777": "+551198887777",
		"12+34":             "1234",
		"":                  "",
	}
	for in, want := range cases {
		if got := NormalizePhone(in); got != want {
			t.Errorf("NormalizePhone(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestEmailValidation(t *testing.T) {
	orig := Lookup
	defer func() { Lookup = orig }()
	Lookup = func(domain string) bool { return domain == "example.com" }

	if !IsEmailSyntaxValid("ana@example.com") {
		t.Error("expected valid syntax")
	}
	if IsEmailSyntaxValid("Ana <ana@example.com>") {
		t.Error("display names are not accepted")
	}
	if !IsEmailDomainValid("ana@example.com") {
		t.Error("expected example.com to resolve")
	}
	if IsEmailDomainValid("ana@nowhere.invalid") || IsEmailDomainValid("ana@") {
		t.Error("expected unresolvable domains to fail")
	}
}
