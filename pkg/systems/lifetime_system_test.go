package systems

import (
	"testing"

	"github.com/decker502/matreshka/pkg/components"
	"github.com/decker502/matreshka/pkg/ecs"
)

func TestLifetimeUpdate(t *testing.T) {
	em := ecs.NewEntityManager()
	system := NewLifetimeSystem(em)

	id := em.CreateEntity()
	ecs.AddComponent(em, id, &components.LifetimeComponent{MaxLifetime: 10.0})

	system.Update(5.0)

	lifetime, _ := ecs.GetComponent[*components.LifetimeComponent](em, id)
	if lifetime.CurrentLifetime != 5.0 {
		t.Errorf("Expected CurrentLifetime=5.0, got %f", lifetime.CurrentLifetime)
	}
	if lifetime.IsExpired {
		t.Error("Entity should not be expired yet")
	}
}

func TestLifetimeExpiration(t *testing.T) {
	em := ecs.NewEntityManager()
	system := NewLifetimeSystem(em)

	id := em.CreateEntity()
	ecs.AddComponent(em, id, &components.LifetimeComponent{MaxLifetime: 10.0})

	system.Update(12.0)

	lifetime, _ := ecs.GetComponent[*components.LifetimeComponent](em, id)
	if !lifetime.IsExpired {
		t.Error("Entity should be expired")
	}

	em.RemoveMarkedEntities()
	if ecs.HasComponent[*components.LifetimeComponent](em, id) {
		t.Error("Expired entity should be removed")
	}
}

func TestMultipleEntitiesWithDifferentLifetimes(t *testing.T) {
	em := ecs.NewEntityManager()
	system := NewLifetimeSystem(em)

	id1 := em.CreateEntity()
	ecs.AddComponent(em, id1, &components.LifetimeComponent{MaxLifetime: 5.0})
	id2 := em.CreateEntity()
	ecs.AddComponent(em, id2, &components.LifetimeComponent{MaxLifetime: 10.0})

	system.Update(3.0)
	system.Update(4.0)
	em.RemoveMarkedEntities()

	if ecs.HasComponent[*components.LifetimeComponent](em, id1) {
		t.Error("Entity 1 should be removed (expired)")
	}
	lifetime, ok := ecs.GetComponent[*components.LifetimeComponent](em, id2)
	if !ok {
		t.Fatal("Entity 2 should still exist")
	}
	if lifetime.IsExpired || lifetime.CurrentLifetime != 7.0 {
		t.Errorf("Entity 2 state = %+v", lifetime)
	}
}
