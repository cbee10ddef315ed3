package store

// Keys of the values the client keeps between calls.
const (
	KeyPublishableKey = "radar-publishableKey"
	KeyHost           = "radar-host"
	KeyBaseAPIPath    = "radar-base-api-path"
	KeyDeviceID       = "radar-deviceId"
	KeyInstallID      = "radar-installId"
	KeyDeviceType     = "radar-deviceType"
	KeyUserID         = "radar-userId"
	KeyDescription    = "radar-description"
	KeyMetadata       = "radar-metadata"
	KeyCustomHeaders  = "radar-custom-headers"
	KeyTripOptions    = "radar-trip-options"
	KeyTripStatus     = "radar-trip-status"
)
