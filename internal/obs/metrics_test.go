package obs

import "testing"

func TestCanonicalPath(t *testing.T) {
	cases := map[string]string{
		"":                                   "/",
		"/metrics":                           "/metrics",
		"/v1/payments/methods":               "/v1/payments/methods",
		"/v1/payments/methods/42":            "/v1/payments/methods/:id",
		"/v1/payments/rules/7":               "/v1/payments/rules/:id",
		"/v1/payments/rules/7/trigger":       "/v1/payments/rules/:id/trigger",
		"/v1/payments/rules/7/extra/deep":    "/v1/payments/rules/7/extra/deep",
		"/v1/payments/history":               "/v1/payments/history",
		"/v1/payments/history?limit=10":      "/v1/payments/history",
		"/v1/foundations/3":                  "/v1/foundations/:id",
	}
	for input, expected := range cases {
		if got := CanonicalPath(input); got != expected {
			t.Fatalf("CanonicalPath(%q)=%q, want %q", input, got, expected)
		}
	}
}
