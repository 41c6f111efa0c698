package lifecycle

import "errors"

var (
	ErrNoConsultant        = errors.New("no consultant selected")
	ErrNotConsultant       = errors.New("assignee is not an active consultant")
	ErrDepartmentMismatch  = errors.New("consultant does not belong to the consultation's department")
	ErrNotAssignable       = errors.New("consultation cannot be assigned in current status")
	ErrNotAwaiting         = errors.New("consultation is not awaiting acceptance")
	ErrNotParticipant      = errors.New("user is not a party to this consultation")
	ErrChatDisabled        = errors.New("chat is disabled in current status")
	ErrEmptyMessage        = errors.New("message text cannot be empty")
	ErrNotActive           = errors.New("consultation is not active")
	ErrNotCompleted        = errors.New("consultation is not completed")
	ErrTestimonialExists   = errors.New("testimonial already submitted")
	ErrEmptyTestimonial    = errors.New("testimonial text cannot be empty")
	ErrNotPausable         = errors.New("only an active consultation can be paused")
	ErrNotPaused           = errors.New("consultation is not paused")
	ErrOnlyConsultantEnds  = errors.New("only the assigned consultant can complete the consultation")
	ErrOnlyStudentAttests  = errors.New("only the student can submit a testimonial")
)
