package systems

import (
	"testing"

	"github.com/decker502/matreshka/pkg/components"
	"github.com/decker502/matreshka/pkg/ecs"
	"github.com/decker502/matreshka/pkg/entities"
)

func buttonCenter(t *testing.T, em *ecs.EntityManager, id ecs.EntityID, idx int) (float64, float64) {
	t.Helper()
	dialog, _ := ecs.GetComponent[*components.DialogComponent](em, id)
	pos, _ := ecs.GetComponent[*components.PositionComponent](em, id)
	b := dialog.Buttons[idx]
	return pos.X + b.X + b.Width/2, pos.Y + b.Y + b.Height/2
}

func TestDialogInputClicksButton(t *testing.T) {
	em := ecs.NewEntityManager()
	var clicked string
	id, err := entities.NewDialogEntity(em, components.DialogMessage, "Paused", nil, "red", []entities.ButtonSpec{
		{Label: "Continue", OnClick: func() { clicked = "Continue" }},
		{Label: "Menu", OnClick: func() { clicked = "Menu" }},
	})
	if err != nil {
		t.Fatal(err)
	}
	system := NewDialogInputSystem(em)
	if !system.HasDialog() {
		t.Fatal("dialog should be detected")
	}

	x, y := buttonCenter(t, em, id, 1)
	system.UpdateHover(x, y, true)
	dialog, _ := ecs.GetComponent[*components.DialogComponent](em, id)
	if dialog.HoveredButtonIdx != 1 || dialog.PressedButtonIdx != 1 {
		t.Errorf("hover=%d pressed=%d, want 1/1", dialog.HoveredButtonIdx, dialog.PressedButtonIdx)
	}

	if !system.HandleRelease(x, y) || clicked != "Menu" {
		t.Errorf("clicked = %q, want Menu", clicked)
	}
}

func TestDialogInputOutsideClickIgnored(t *testing.T) {
	em := ecs.NewEntityManager()
	fired := false
	if _, err := entities.NewDialogEntity(em, components.DialogMessage, "Rules", nil, "", []entities.ButtonSpec{
		{Label: "OK", OnClick: func() { fired = true }},
	}); err != nil {
		t.Fatal(err)
	}
	system := NewDialogInputSystem(em)
	if system.HandleRelease(2, 2) || fired {
		t.Error("click outside the dialog must not close it")
	}
	if !system.HasDialog() {
		t.Error("dialog should remain")
	}
}

func TestDialogInputTopmostOnly(t *testing.T) {
	em := ecs.NewEntityManager()
	var order []string
	bottom, _ := entities.NewDialogEntity(em, components.DialogMessage, "Bottom", nil, "", []entities.ButtonSpec{
		{Label: "A", OnClick: func() { order = append(order, "bottom") }},
	})
	top, _ := entities.NewDialogEntity(em, components.DialogMessage, "Top", nil, "", []entities.ButtonSpec{
		{Label: "B", OnClick: func() { order = append(order, "top") }},
	})

	system := NewDialogInputSystem(em)
	x, y := buttonCenter(t, em, top, 0)
	system.HandleRelease(x, y)
	if len(order) != 1 || order[0] != "top" {
		t.Fatalf("order = %v, want [top]", order)
	}

	// 上层隐藏后下层接收点击
	dialog, _ := ecs.GetComponent[*components.DialogComponent](em, top)
	dialog.IsVisible = false
	x, y = buttonCenter(t, em, bottom, 0)
	system.HandleRelease(x, y)
	if len(order) != 2 || order[1] != "bottom" {
		t.Errorf("order = %v, want [top bottom]", order)
	}
}
