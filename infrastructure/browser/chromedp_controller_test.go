package browser

import (
	"context"
	"testing"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/runtime"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"e2e_automation/domain/errs"
)

func detachedChromedp() *ChromedpController {
	return &ChromedpController{
		ctx:         context.Background(),
		cancel:      func() {},
		allocCancel: func() {},
		opts:        Options{}.withDefaults(),
		logger:      logrus.New(),
	}
}

func TestOnObject(t *testing.T) {
	params := onObject("42.1.7")(runtime.CallFunctionOn("function() { return this.id; }"))
	assert.Equal(t, runtime.RemoteObjectID("42.1.7"), params.ObjectID)
	assert.Equal(t, "function() { return this.id; }", params.FunctionDeclaration)
}

func TestChromedpElement_ClosedBrowser(t *testing.T) {
	c := detachedChromedp()
	c.closed = true
	el := &chromedpElement{c: c, node: &cdp.Node{NodeID: 7}}
	ctx := context.Background()

	_, err := el.Text(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "browser has been closed")

	_, err = el.Location(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "browser has been closed")

	assert.Error(t, el.Clear(ctx))
	require.NoError(t, c.Close(), "closing twice is a no-op")
}

func TestChromedpElement_CancelledContext(t *testing.T) {
	el := &chromedpElement{c: detachedChromedp(), node: &cdp.Node{NodeID: 7}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := el.Attribute(ctx, "value")
	assert.ErrorIs(t, err, context.Canceled)
	_, err = el.IsDisplayed(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestChromedpAlertText_ReportsDialogOnce(t *testing.T) {
	c := detachedChromedp()
	ctx := context.Background()

	_, err := c.AlertText(ctx)
	assert.True(t, errs.Is(err, errs.NoAlert))

	message := "Delete this item?"
	c.dialog = &message
	text, err := c.AlertText(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Delete this item?", text)

	_, err = c.AlertText(ctx)
	assert.True(t, errs.Is(err, errs.NoAlert), "an accepted dialog is not reported again")
}

func TestPlaywrightAlertText_ClosedBrowser(t *testing.T) {
	b := &PlaywrightController{}
	_, err := b.AlertText(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "browser has been closed")
}
