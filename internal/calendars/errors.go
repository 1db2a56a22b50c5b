package calendars

import "errors"

var (
	ErrForbidden = errors.New("not the owner of this calendar")
	ErrReadOnly  = errors.New("calendar is read-only")
)

// ValidationError reports bad caller input.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Msg
}

func invalid(field, msg string) error {
	return &ValidationError{Field: field, Msg: msg}
}

// IsNotFound reports whether err is one of the store's not-found sentinels.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrCalendarNotFound) ||
		errors.Is(err, ErrCategoryNotFound) ||
		errors.Is(err, ErrDayNotFound)
}
