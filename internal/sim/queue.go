// Package sim implements the fixed-rate authoritative simulation loop:
// draining the join/disconnect/command queues, stepping physics, and
// broadcasting dirty player state. Grounded on the teacher's
// source/server/server.go updateLoop (a ticker-driven goroutine calling
// into a single owning component once per tick).
package sim

import (
	"sync"

	"github.com/riftforged/gameserver/internal/wire"
)

// CommandKind tags the variant carried by a QueuedCommand.
type CommandKind uint8

const (
	CommandMovementInput CommandKind = iota
	CommandTurnIntent
	CommandRiftStepActivation
	CommandBasicAttackIntent
	CommandUseAbility
)

// QueuedCommand is the tagged sum type the dispatch path pushes and the
// simulation thread drains, replacing the std::any-typed queue the
// original design note calls out: one concrete struct carries every
// variant's fields rather than an opaque payload requiring a runtime type
// switch on an interface{}.
type QueuedCommand struct {
	PlayerID uint64
	Kind     CommandKind

	Movement    wire.MovementInputC2S
	Turn        wire.TurnIntentC2S
	RiftStep    wire.RiftStepActivationC2S
	BasicAttack wire.BasicAttackIntentC2S
	UseAbility  wire.UseAbilityC2S
}

// CommandQueue is a thread-safe FIFO: pushed from the dispatch path (socket
// thread), drained once per tick by the simulation thread.
type CommandQueue struct {
	mu    sync.Mutex
	items []QueuedCommand
}

// NewCommandQueue constructs an empty queue.
func NewCommandQueue() *CommandQueue {
	return &CommandQueue{}
}

// Push enqueues a command.
func (q *CommandQueue) Push(c QueuedCommand) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, c)
}

// Drain removes and returns every queued command.
func (q *CommandQueue) Drain() []QueuedCommand {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return nil
	}
	drained := q.items
	q.items = nil
	return drained
}

// Len reports the current queue depth, used to drive the
// command_queue_depth gauge.
func (q *CommandQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
