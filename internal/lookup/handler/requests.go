package handler

import (
	"fmt"
	"net/url"
	"strings"

	"amlgen/internal/generator/models"
	"amlgen/internal/lookup/store"
)

type listAlertsRequest struct {
	Status   string
	Severity string
}

func listAlertsRequestFromQuery(q url.Values) *listAlertsRequest {
	return &listAlertsRequest{Status: q.Get("status"), Severity: q.Get("severity")}
}

func (r *listAlertsRequest) Normalize() {
	r.Status = strings.ToLower(strings.TrimSpace(r.Status))
	r.Severity = strings.ToLower(strings.TrimSpace(r.Severity))
}

func (r *listAlertsRequest) Validate() error {
	if r.Status != "" && !models.AlertStatus(r.Status).IsValid() {
		return fmt.Errorf("status must be one of new, in_review, closed; got %q", r.Status)
	}
	if r.Severity != "" && !models.Severity(r.Severity).IsValid() {
		return fmt.Errorf("severity must be one of low, medium, high; got %q", r.Severity)
	}
	return nil
}

func (r *listAlertsRequest) Filter() store.AlertFilter {
	return store.AlertFilter{Status: models.AlertStatus(r.Status), Severity: models.Severity(r.Severity)}
}
