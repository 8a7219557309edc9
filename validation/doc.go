// Package validation checks inbound chat requests and CLI input.
//
// Struct tag validation uses go-playground/validator and reports fields by
// their JSON names:
//
//	type ChatRequest struct {
//	    Messages []Message `json:"messages" validate:"required,min=1,dive"`
//	    Model    string    `json:"model" validate:"required"`
//	}
//	err := validation.Validate(req)
//
// The chained Validator covers ad-hoc checks:
//
//	err := validation.New().UUID("id", id).MaxLength("title", title, 200).Validate()
//
// Both return *errors.AppError with code INVALID_INPUT and a "fields" detail.
package validation
