// Package schema provides field validation for node configurations.
//
// Each node kind has a Schema mapping its config keys to a Field, which pairs a
// value Type with a Required flag. Edits are checked one field at a time with
// ValidateField, where an empty value is always accepted so a user can clear a
// field while typing. A whole config is checked with Validate before a workflow
// is submitted, which additionally enforces required fields.
//
// Basic usage:
//
//	s := schema.For(domain.KindEmailAction)
//	if err := s.ValidateField("receiverEmail", "ops@example.com"); err != nil {
//	    // reject the edit
//	}
//
//	if err := schema.ValidateConfig(node.Config); err != nil {
//	    // report every problem at once
//	}
//
// Custom validators can be registered for domain-specific checks:
//
//	slug := schema.Custom("slug", func(v any) error {
//	    s, _ := v.(string)
//	    if strings.ContainsAny(s, " /") {
//	        return fmt.Errorf("must not contain spaces or slashes")
//	    }
//	    return nil
//	})
package schema
