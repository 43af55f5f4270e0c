package verifier

import "fmt"

// ConfigurationError reports a verification call that cannot be evaluated
// with the parameters it was given.
type ConfigurationError struct {
	Reason string
	Err    error
}

func (e *ConfigurationError) Error() string {
	if e.Err == nil {
		return "configuration error: " + e.Reason
	}
	return fmt.Sprintf("configuration error: %s: %v", e.Reason, e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// DeserializationError reports key, proof or input bytes that do not decode.
type DeserializationError struct {
	What string
	Err  error
}

func (e *DeserializationError) Error() string {
	return fmt.Sprintf("failed to deserialize %s: %v", e.What, e.Err)
}

func (e *DeserializationError) Unwrap() error {
	return e.Err
}

func configErr(reason string, err error) error {
	return &ConfigurationError{Reason: reason, Err: err}
}

func decodeErr(what string, err error) error {
	return &DeserializationError{What: what, Err: err}
}
