package domain

import "fmt"

// ResultKind distinguishes failures callers must route specially.
type ResultKind string

// KindBidLimit marks the concurrent-bid-limit rejection; the UI opens a
// dedicated dialog for it instead of showing inline error text.
const KindBidLimit ResultKind = "bid_limit"

// Result is the outcome of every mutating engine operation. Business-rule
// violations come back as Success=false with a displayable Message; the
// engine never panics or errors out for expected validation failures.
type Result struct {
	Success bool       `json:"success"`
	Message string     `json:"message"`
	Kind    ResultKind `json:"kind,omitempty"`
}

func OK(format string, args ...interface{}) Result {
	return Result{Success: true, Message: fmt.Sprintf(format, args...)}
}

func Fail(format string, args ...interface{}) Result {
	return Result{Success: false, Message: fmt.Sprintf(format, args...)}
}

func FailKind(kind ResultKind, format string, args ...interface{}) Result {
	return Result{Success: false, Message: fmt.Sprintf(format, args...), Kind: kind}
}
