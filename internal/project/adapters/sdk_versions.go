package adapters

import (
	"context"

	sdkmodels "paam/internal/sdk/models"
	id "paam/pkg/domain"
)

type versionGetter interface {
	GetVersion(ctx context.Context, versionID id.VersionID) (*sdkmodels.Version, error)
}

// SDKVersions lets builds pin published SDK versions through the SDK service.
type SDKVersions struct {
	sdk versionGetter
}

func NewSDKVersions(sdk versionGetter) *SDKVersions {
	return &SDKVersions{sdk: sdk}
}

// RequirePublished passes through the SDK service's not-found error for
// unknown or unpublished versions.
func (a *SDKVersions) RequirePublished(ctx context.Context, versionID id.VersionID) error {
	_, err := a.sdk.GetVersion(ctx, versionID)
	return err
}
