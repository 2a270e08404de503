package browser

import (
	"strings"

	"e2e_automation/domain/errs"
)

// isClosedError - reports errors raised by a browser that is already shutting down
func isClosedError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "closed") || strings.Contains(errStr, "target closed")
}

var staleMarkers = []string{
	"stale element reference",
	"not attached to the dom",
	"element is not attached",
	"no node with given id",
	"could not find node with given id",
	"node with given id does not belong to the document",
}

var noAlertMarkers = []string{
	"no such alert",
	"no alert open",
	"no dialog is showing",
}

// classify - maps driver errors onto harness error codes, leaving others as they are
func classify(err error, what string) error {
	if err == nil {
		return nil
	}
	lower := strings.ToLower(err.Error())
	for _, marker := range staleMarkers {
		if strings.Contains(lower, marker) {
			return errs.Wrap(errs.StaleElement, what, err)
		}
	}
	for _, marker := range noAlertMarkers {
		if strings.Contains(lower, marker) {
			return errs.Wrap(errs.NoAlert, what, err)
		}
	}
	if strings.Contains(lower, "no such element") {
		return errs.Wrap(errs.ElementNotFound, what, err)
	}
	return err
}
