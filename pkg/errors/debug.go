package errors

// ErrorDump flattens an error chain for structured logging.
type ErrorDump struct {
	TopMessage string
	Code       string
	Chain      []string
}

// Dump walks the unwrap chain so log lines carry the full causal path.
func Dump(err error) ErrorDump {
	dump := ErrorDump{}
	if err == nil {
		return dump
	}
	dump.TopMessage = err.Error()
	if typed := As(err); typed != nil {
		dump.Code = string(typed.Code())
	}
	for cursor := err; cursor != nil; {
		dump.Chain = append(dump.Chain, cursor.Error())
		unwrapper, ok := cursor.(interface{ Unwrap() error })
		if !ok {
			break
		}
		cursor = unwrapper.Unwrap()
	}
	return dump
}
