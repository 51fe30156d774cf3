package errors

import "log/slog"

// Attrs exposes the structured fields of the error for logging.
func (e *Error) Attrs() []slog.Attr {
	a := make([]slog.Attr, 0, 6)

	a = append(a, slog.Int("kind", int(e.Kind)))

	if e.Operation != "" {
		a = append(a, slog.String("operation", e.Operation))
	}

	if e.HTTPStatusCode != 0 {
		a = append(a, slog.Int("http_status_code", e.HTTPStatusCode))
	}

	if e.NestedError != nil {
		a = append(a, slog.Any("nested_error", e.NestedError))
	}

	switch e.Kind {
	case ConfigurationInvalid, ArgumentInvalid:
		a = append(a,
			slog.String("property_name", e.PropertyName),
			slog.Any("property_value", e.PropertyValue),
		)
	case StateInvalid, PayloadInvalid:
		a = append(a, slog.String("property_name", e.PropertyName))
		if e.PropertyValue != nil {
			a = append(a, slog.Any("property_value", e.PropertyValue))
		}
	}

	return a
}
