package systems

import (
	"github.com/decker502/matreshka/pkg/components"
	"github.com/decker502/matreshka/pkg/ecs"
)

// LifetimeSystem 管理限时实体（得分飘字等）的生命周期
type LifetimeSystem struct {
	entityManager *ecs.EntityManager
}

// NewLifetimeSystem 创建生命周期系统
func NewLifetimeSystem(em *ecs.EntityManager) *LifetimeSystem {
	return &LifetimeSystem{
		entityManager: em,
	}
}

// Update 累加存在时间，过期的实体标记删除
// 实际删除由调用方在帧末执行 RemoveMarkedEntities
func (s *LifetimeSystem) Update(deltaTime float64) {
	for _, id := range ecs.GetEntitiesWith1[*components.LifetimeComponent](s.entityManager) {
		lifetime, _ := ecs.GetComponent[*components.LifetimeComponent](s.entityManager, id)

		lifetime.CurrentLifetime += deltaTime
		if lifetime.CurrentLifetime >= lifetime.MaxLifetime {
			lifetime.IsExpired = true
		}
		if lifetime.IsExpired {
			s.entityManager.DestroyEntity(id)
		}
	}
}
