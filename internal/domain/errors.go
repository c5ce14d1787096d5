package domain

import "github.com/cockroachdb/errors"

// ErrNotFound is returned by lookups for booths that do not exist or have
// been archived. Business-rule violations are not errors; they surface as
// Result values.
var ErrNotFound = errors.New("not found")
