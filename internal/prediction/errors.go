package prediction

import "errors"

// ErrPredictionFailed indicates the model could not score a live chase.
// The request produced no output and may be retried.
var ErrPredictionFailed = errors.New("prediction failed")
