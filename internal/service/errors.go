package service

import (
	"fmt"

	"github.com/educert/pvb-service/internal/store/model"
	"github.com/google/uuid"
)

type ErrNotAuthorized struct {
	error
}

func NewErrNotAuthorized(personID, requestID uuid.UUID, role string) *ErrNotAuthorized {
	return &ErrNotAuthorized{fmt.Errorf("person %s is not a %s of request %s", personID, role, requestID)}
}

type ErrInvalidTransition struct {
	error
}

func NewErrInvalidTransition(requestID uuid.UUID, from model.RequestStatus, operation string) *ErrInvalidTransition {
	return &ErrInvalidTransition{fmt.Errorf("request %s: %s is not allowed from status %q", requestID, operation, from)}
}

type ErrIncompleteAssessment struct {
	error
}

func NewErrIncompleteAssessment(requestID, componentID uuid.UUID) *ErrIncompleteAssessment {
	return &ErrIncompleteAssessment{fmt.Errorf("request %s: component %s outcome is still undetermined", requestID, componentID)}
}

type ErrAlreadyDecided struct {
	error
}

func NewErrAlreadyDecided(requestID uuid.UUID, status model.PermissionStatus) *ErrAlreadyDecided {
	return &ErrAlreadyDecided{fmt.Errorf("request %s: coach permission is already %q", requestID, status)}
}

type ErrLastCourse struct {
	error
}

func NewErrLastCourse(requestID uuid.UUID) *ErrLastCourse {
	return &ErrLastCourse{fmt.Errorf("request %s: removing the course would leave the request without courses", requestID)}
}

type ErrRequestNotFound struct {
	error
}

func NewErrRequestNotFound(id uuid.UUID) *ErrRequestNotFound {
	return &ErrRequestNotFound{fmt.Errorf("assessment request %s not found", id)}
}

type ErrValidation struct {
	error
}

func NewErrValidation(message string) *ErrValidation {
	return &ErrValidation{fmt.Errorf("invalid payload: %s", message)}
}

// ErrorKind names the error category for per-item bulk results and API
// responses.
func ErrorKind(err error) string {
	switch err.(type) {
	case *ErrNotAuthorized:
		return "NotAuthorized"
	case *ErrInvalidTransition:
		return "InvalidTransition"
	case *ErrIncompleteAssessment:
		return "IncompleteAssessment"
	case *ErrAlreadyDecided:
		return "AlreadyDecided"
	case *ErrLastCourse:
		return "LastCourse"
	case *ErrRequestNotFound:
		return "NotFound"
	case *ErrValidation:
		return "ValidationError"
	default:
		return "Internal"
	}
}
