package service

import (
	"marketplace-api/internal/authz"
	"marketplace-api/internal/domain"
	"marketplace-api/internal/metrics"
	apperrors "marketplace-api/pkg/errors"
)

// requireOwner applies authz.RequireOwner and counts Forbidden outcomes
func requireOwner(recorder metrics.AuthRecorder, caller domain.CallerIdentity, ownerID int64, resource string) error {
	err := authz.RequireOwner(caller, ownerID, resource)
	if apperrors.IsType(err, apperrors.ErrorTypeAuthorization) {
		recorder.RecordForbidden(resource)
	}
	return err
}

func recorderOrNop(recorder metrics.AuthRecorder) metrics.AuthRecorder {
	if recorder == nil {
		return metrics.Nop{}
	}
	return recorder
}
