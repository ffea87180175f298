package iso8583

import (
	"fmt"
)

// Message Type Indicator (MTI) structure according to ISO 8583.
//
// The MTI is four decimal digits, read left to right:
//
// Digit 1: Version of the standard (0=1987, 1=1993, 2=2003, 9=private).
// Digit 2: Message class (authorization, financial, network management...).
// Digit 3: Message function (request, response, advice...).
// Digit 4: Message origin (acquirer, issuer, and their repeats).
//
// Requests carry an even function digit; the matching response adds one,
// so 0200 is answered by 0210 and 0800 by 0810.

// Version is the first MTI digit.
type Version uint8

const (
	Version1987    Version = 0
	Version1993    Version = 1
	Version2003    Version = 2
	VersionPrivate Version = 9
)

// Class is the second MTI digit.
type Class uint8

const (
	ClassAuthorization     Class = 1
	ClassFinancial         Class = 2
	ClassFileAction        Class = 3
	ClassReversal          Class = 4
	ClassReconciliation    Class = 5
	ClassAdministrative    Class = 6
	ClassFeeCollection     Class = 7
	ClassNetworkManagement Class = 8
)

// Function is the third MTI digit.
type Function uint8

const (
	FunctionRequest         Function = 0
	FunctionRequestResponse Function = 1
	FunctionAdvice          Function = 2
	FunctionAdviceResponse  Function = 3
	FunctionNotification    Function = 4
	FunctionNotificationAck Function = 5
	FunctionInstruction     Function = 6
	FunctionInstructionAck  Function = 7
)

// Origin is the fourth MTI digit.
type Origin uint8

const (
	OriginAcquirer       Origin = 0
	OriginAcquirerRepeat Origin = 1
	OriginIssuer         Origin = 2
	OriginIssuerRepeat   Origin = 3
	OriginOther          Origin = 4
	OriginOtherRepeat    Origin = 5
)

var classNames = map[Class]string{
	ClassAuthorization:     "Authorization",
	ClassFinancial:         "Financial",
	ClassFileAction:        "File Action",
	ClassReversal:          "Reversal",
	ClassReconciliation:    "Reconciliation",
	ClassAdministrative:    "Administrative",
	ClassFeeCollection:     "Fee Collection",
	ClassNetworkManagement: "Network Management",
}

var functionNames = map[Function]string{
	FunctionRequest:         "Request",
	FunctionRequestResponse: "Response",
	FunctionAdvice:          "Advice",
	FunctionAdviceResponse:  "Advice Response",
	FunctionNotification:    "Notification",
	FunctionNotificationAck: "Notification Ack",
	FunctionInstruction:     "Instruction",
	FunctionInstructionAck:  "Instruction Ack",
}

// MTI represents a parsed message type indicator.
type MTI struct {
	Raw      string
	Version  Version
	Class    Class
	Function Function
	Origin   Origin
}

// ParseMTI decodes four decimal digits such as "0200".
func ParseMTI(s string) (MTI, error) {
	if len(s) != 4 {
		return MTI{}, fmt.Errorf("%w: MTI %q must be 4 digits", ErrInvalidValue, s)
	}
	var d [4]uint8
	for i := 0; i < 4; i++ {
		if s[i] < '0' || s[i] > '9' {
			return MTI{}, fmt.Errorf("%w: MTI %q must be decimal", ErrInvalidValue, s)
		}
		d[i] = s[i] - '0'
	}

	return MTI{
		Raw:      s,
		Version:  Version(d[0]),
		Class:    Class(d[1]),
		Function: Function(d[2]),
		Origin:   Origin(d[3]),
	}, nil
}

// IsRequest reports whether the function digit is even.
func (m MTI) IsRequest() bool {
	return m.Function%2 == 0
}

// IsResponse reports whether the function digit is odd.
func (m MTI) IsResponse() bool {
	return !m.IsRequest()
}

// Response returns the MTI answering m: 0200 gives 0210.
func (m MTI) Response() (MTI, error) {
	if !m.IsRequest() {
		return MTI{}, fmt.Errorf("%w: MTI %s is not a request", ErrInvalidValue, m.Raw)
	}
	return ParseMTI(fmt.Sprintf("%d%d%d%d", m.Version, m.Class, m.Function+1, m.Origin))
}

func (m MTI) String() string {
	class, ok := classNames[m.Class]
	if !ok {
		class = fmt.Sprintf("Class %d", m.Class)
	}
	function, ok := functionNames[m.Function]
	if !ok {
		function = fmt.Sprintf("Function %d", m.Function)
	}
	return fmt.Sprintf("%s (%s %s)", m.Raw, class, function)
}
