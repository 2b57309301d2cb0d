package openapi

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/net/http/httpguts"
)

var structValidator = validator.New(validator.WithRequiredStructEnabled())

// statusRangeRegexp matches response keys like "4XX".
var statusRangeRegexp = regexp.MustCompile(`^[1-5]XX$`)

// validateRoute checks the structure of a route and its callbacks. Any
// failure aborts generation before a document is assembled.
func validateRoute(r *Route) error {
	return checkRoute(r, false)
}

// checkRoute validates one route. Callback paths are runtime expressions
// and need not start with a slash.
func checkRoute(r *Route, callback bool) error {
	if r == nil {
		return &RouteError{Reason: "nil route"}
	}
	fail := func(reason string, err error) error {
		return &RouteError{Path: r.Path, Name: r.Name, Reason: reason, Err: err}
	}

	if err := structValidator.Struct(r); err != nil {
		return fail("invalid fields", err)
	}
	if !callback && !strings.HasPrefix(r.Path, "/") {
		return fail("path must start with /", nil)
	}

	if r.Body != nil && r.Body.In != InBody {
		return fail(fmt.Sprintf("body field %q must be located in body, got %q", r.Body.Alias, r.Body.In), nil)
	}

	var walkErr error
	seen := make(map[*Dependency]bool)
	var walk func(deps []*Dependency)
	walk = func(deps []*Dependency) {
		for _, dep := range deps {
			if walkErr != nil || dep == nil || seen[dep] {
				continue
			}
			seen[dep] = true
			for _, p := range dep.Parameters {
				if err := validateParameter(p); err != nil {
					walkErr = fail("invalid parameter", err)
					return
				}
			}
			for _, sec := range dep.Security {
				if err := structValidator.Struct(sec); err != nil {
					walkErr = fail("invalid security requirement", err)
					return
				}
			}
			walk(dep.Dependencies)
		}
	}
	walk(r.Dependencies)
	if walkErr != nil {
		return walkErr
	}

	for key := range r.Responses {
		if !validResponseKey(key) {
			return fail(fmt.Sprintf("invalid response key %q", key), nil)
		}
	}

	for _, cb := range r.Callbacks {
		if err := checkRoute(cb, true); err != nil {
			return fail("invalid callback", err)
		}
	}
	return nil
}

func validateParameter(p *Field) error {
	if p == nil {
		return fmt.Errorf("nil parameter")
	}
	if err := structValidator.Struct(p); err != nil {
		return err
	}
	if p.In == InBody {
		return fmt.Errorf("parameter %q is located in body, declare it as the route body", p.Alias)
	}
	if p.In == InHeader && !httpguts.ValidHeaderFieldName(p.Alias) {
		return fmt.Errorf("header parameter %q is not a valid header field name", p.Alias)
	}
	return nil
}

// validResponseKey accepts status codes, status ranges and "default" in
// any letter case.
func validResponseKey(key string) bool {
	upper := strings.ToUpper(key)
	if upper == "DEFAULT" || statusRangeRegexp.MatchString(upper) {
		return true
	}
	code, err := strconv.Atoi(key)
	return err == nil && code >= 100 && code <= 599
}
