package fakebrowser

import (
	"context"
	"fmt"

	"e2e_automation/domain/entities"
	"e2e_automation/domain/errs"
)

type element struct {
	b    *Browser
	node *Node
}

// live returns an error once the node left the current page
func (e *element) live(ctx context.Context) error {
	if err := e.b.checkOpen(ctx); err != nil {
		return err
	}
	e.b.mu.Lock()
	defer e.b.mu.Unlock()
	for _, n := range e.b.page.Elements {
		if n == e.node {
			return nil
		}
	}
	return errs.New(errs.StaleElement, fmt.Sprintf("element %s is no longer attached to the page", e.node.Locator))
}

func (e *element) Click(ctx context.Context) error {
	if err := e.live(ctx); err != nil {
		return err
	}
	e.b.mu.Lock()
	hidden, disabled, onClick := e.node.Hidden, e.node.Disabled, e.node.OnClick
	e.b.mu.Unlock()
	if hidden || disabled {
		return fmt.Errorf("element %s is not interactable", e.node.Locator)
	}
	if onClick != nil {
		onClick(e.b)
	}
	return nil
}

func (e *element) Clear(ctx context.Context) error {
	if err := e.live(ctx); err != nil {
		return err
	}
	e.b.mu.Lock()
	defer e.b.mu.Unlock()
	e.node.value = ""
	return nil
}

func (e *element) SendKeys(ctx context.Context, text string) error {
	if err := e.live(ctx); err != nil {
		return err
	}
	e.b.mu.Lock()
	defer e.b.mu.Unlock()
	if e.node.Hidden || e.node.Disabled {
		return fmt.Errorf("element %s is not interactable", e.node.Locator)
	}
	e.node.value += text
	return nil
}

func (e *element) Text(ctx context.Context) (string, error) {
	if err := e.live(ctx); err != nil {
		return "", err
	}
	e.b.mu.Lock()
	defer e.b.mu.Unlock()
	return e.node.Text, nil
}

func (e *element) Attribute(ctx context.Context, name string) (string, error) {
	if err := e.live(ctx); err != nil {
		return "", err
	}
	e.b.mu.Lock()
	defer e.b.mu.Unlock()
	if name == "value" {
		return e.node.value, nil
	}
	return e.node.Attrs[name], nil
}

func (e *element) IsDisplayed(ctx context.Context) (bool, error) {
	if err := e.live(ctx); err != nil {
		return false, err
	}
	e.b.mu.Lock()
	defer e.b.mu.Unlock()
	return !e.node.Hidden, nil
}

func (e *element) IsEnabled(ctx context.Context) (bool, error) {
	if err := e.live(ctx); err != nil {
		return false, err
	}
	e.b.mu.Lock()
	defer e.b.mu.Unlock()
	return !e.node.Disabled, nil
}

func (e *element) Location(ctx context.Context) (entities.Position, error) {
	if err := e.live(ctx); err != nil {
		return entities.Position{}, err
	}
	e.b.mu.Lock()
	defer e.b.mu.Unlock()
	if e.node.Hidden {
		return entities.Position{}, errs.New(errs.StaleElement, fmt.Sprintf("element %s has no bounding box", e.node.Locator))
	}
	return e.node.Pos, nil
}
