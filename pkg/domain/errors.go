package domain

import "errors"

// ErrUnknownObject is returned when an operation references an object ID
// that is not registered.
var ErrUnknownObject = errors.New("unknown object")

// ErrInvalidPosition is returned when a position update carries a
// non-positive width or height. The prior position is left untouched.
var ErrInvalidPosition = errors.New("invalid position")

// ErrInvalidConfig is returned when an object descriptor fails validation
// at registration time.
var ErrInvalidConfig = errors.New("invalid object config")

// ErrDuplicateObject is returned when registering an ID that already exists.
var ErrDuplicateObject = errors.New("object already registered")

// ErrAssetLoadFailed marks a path whose fetch or decode failed. It is
// recorded per path and recoverable via retry.
var ErrAssetLoadFailed = errors.New("asset load failed")

// ErrAssetNotFound is returned by fetchers when a path does not resolve.
var ErrAssetNotFound = errors.New("asset not found")

// ErrObjectNotInteractive is returned when activating an object whose
// descriptor declares it non-interactive.
var ErrObjectNotInteractive = errors.New("object is not interactive")

// ErrPositioningDisabled is returned when starting a drag while
// positioning mode is off.
var ErrPositioningDisabled = errors.New("positioning mode is disabled")

// ErrObjectLocked is returned when starting a drag on a locked object.
var ErrObjectLocked = errors.New("object is locked")

// ErrUnknownPreset is returned when a named preset does not exist.
var ErrUnknownPreset = errors.New("unknown preset")

// ErrEngineClosed is returned by operations on a torn-down engine.
var ErrEngineClosed = errors.New("engine is closed")
