// Package domain defines the webhook models of an application namespace.
//
// A webhook may carry an auth key sent to its target. The auth key is stored
// sealed in an envelope under the rotating "webhook-auth-key" key of the
// (app code, namespace) pair and is only opened on a detail lookup.
package domain

import (
	"time"

	"github.com/google/uuid"
	validation "github.com/jellydator/validation"

	"github.com/allisson/appconfig/internal/errors"
	appValidation "github.com/allisson/appconfig/internal/validation"
)

// TriggerType is the kind of change that fires a webhook.
type TriggerType string

const (
	TriggerChange TriggerType = "CHANGE"
	TriggerRemove TriggerType = "REMOVE"
)

// TriggerOn is the resource a webhook watches.
type TriggerOn string

const (
	TriggerOnAPIKey TriggerOn = "APIKEY"
	TriggerOnConfig TriggerOn = "CONFIG"
)

// Method is the HTTP method used to call the target.
type Method string

const (
	MethodPost   Method = "POST"
	MethodPut    Method = "PUT"
	MethodDelete Method = "DELETE"
	MethodGet    Method = "GET"
)

// BodyType is the encoding of the request body sent to the target.
type BodyType string

const (
	BodyJSON     BodyType = "JSON"
	BodyFormData BodyType = "formData"
)

// Webhook is a registered callback of an application namespace.
type Webhook struct {
	ID          uuid.UUID
	AppCode     string
	Namespace   string
	Name        string
	TriggerType TriggerType
	TriggerOn   TriggerOn
	TargetURL   string
	Method      Method
	// AuthKey is the sealed envelope of the auth key, nil when the webhook has none.
	AuthKey   *string
	BodyType  BodyType
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}

// Detail is a webhook with its auth key opened.
type Detail struct {
	*Webhook
	PlainAuthKey *string
}

// Validate checks the fields a webhook is registered or updated with.
func (w *Webhook) Validate() error {
	err := validation.ValidateStruct(w,
		validation.Field(&w.AppCode, validation.Required, appValidation.Code),
		validation.Field(&w.Namespace, validation.Required, appValidation.Code),
		validation.Field(&w.Name, validation.Required, appValidation.NotBlank, validation.Length(1, 128)),
		validation.Field(&w.TriggerType, validation.Required, validation.In(TriggerChange, TriggerRemove)),
		validation.Field(&w.TriggerOn, validation.Required, validation.In(TriggerOnAPIKey, TriggerOnConfig)),
		validation.Field(&w.TargetURL, validation.Required, appValidation.HTTPURL, validation.Length(1, 255)),
		validation.Field(&w.Method, validation.Required,
			validation.In(MethodPost, MethodPut, MethodDelete, MethodGet)),
		validation.Field(&w.BodyType, validation.Required, validation.In(BodyJSON, BodyFormData)),
	)
	if err != nil {
		return errors.Wrap(ErrInvalidWebhook, err.Error())
	}
	return nil
}
