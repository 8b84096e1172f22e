//go:build darwin

package darwin

import "fmt"

// CGError mirrors the CoreGraphics CGError result code.
type CGError int32

const (
	CGSuccess           CGError = 0
	CGFailure           CGError = 1000
	CGIllegalArgument   CGError = 1001
	CGInvalidConnection CGError = 1002
	CGInvalidContext    CGError = 1003
	CGCannotComplete    CGError = 1004
	CGNotImplemented    CGError = 1006
	CGRangeCheck        CGError = 1007
	CGTypeCheck         CGError = 1008
	CGInvalidOperation  CGError = 1010
	CGNoneAvailable     CGError = 1011
)

var cgErrorNames = map[CGError]string{
	CGSuccess:           "success",
	CGFailure:           "failure",
	CGIllegalArgument:   "illegalArgument",
	CGInvalidConnection: "invalidConnection",
	CGInvalidContext:    "invalidContext",
	CGCannotComplete:    "cannotComplete",
	CGNotImplemented:    "notImplemented",
	CGRangeCheck:        "rangeCheck",
	CGTypeCheck:         "typeCheck",
	CGInvalidOperation:  "invalidOperation",
	CGNoneAvailable:     "noneAvailable",
}

func (e CGError) String() string {
	if name, ok := cgErrorNames[e]; ok {
		return fmt.Sprintf("%d: %s", int32(e), name)
	}
	return fmt.Sprintf("%d: unknown", int32(e))
}
