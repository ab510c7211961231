package services

import (
	"context"
	"sync"

	"taskboard/apperrors"
	"taskboard/logging"
	"taskboard/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Lane je tipizirani identifikator jedne od tri kolone table.
type Lane string

const (
	LanePending    Lane = "lane-pending"
	LaneInProgress Lane = "lane-in-progress"
	LaneCompleted  Lane = "lane-completed"
)

// LaneFromZoneID mapira drop-zone identifikator na lane.
func LaneFromZoneID(zoneID string) (Lane, bool) {
	switch Lane(zoneID) {
	case LanePending, LaneInProgress, LaneCompleted:
		return Lane(zoneID), true
	}
	return "", false
}

func LaneForStatus(status models.TaskStatus) Lane {
	switch status {
	case models.StatusInProgress:
		return LaneInProgress
	case models.StatusCompleted:
		return LaneCompleted
	default:
		return LanePending
	}
}

func (l Lane) Status() models.TaskStatus {
	switch l {
	case LaneInProgress:
		return models.StatusInProgress
	case LaneCompleted:
		return models.StatusCompleted
	default:
		return models.StatusPending
	}
}

// MutationState prati sudbinu jedne optimističke izmene.
type MutationState int

const (
	MutationPending MutationState = iota
	MutationConfirmed
	MutationFailed
)

// TaskPersister je udaljeni sloj za upis taskova (TaskService u produkciji).
type TaskPersister interface {
	GetAllTasks(ctx context.Context) ([]models.Task, error)
	CreateTask(ctx context.Context, task models.Task, creator models.Identity) (*models.Task, error)
	UpdateTask(ctx context.Context, taskID primitive.ObjectID, update models.TaskUpdate) (*models.Task, error)
	ChangeTaskStatus(ctx context.Context, taskID primitive.ObjectID, status models.TaskStatus) (*models.Task, error)
	DeleteTask(ctx context.Context, taskID primitive.ObjectID) error
}

// BoardService drži in-memory ogledalo kolekcije taskova za tablu i prevodi
// poteze korisnika u upise. Izmene se primenjuju optimistički: lokalno odmah,
// a pri neuspehu upisa ogledalo se vraća na stanje pre izmene.
type BoardService struct {
	mu        sync.Mutex
	Persister TaskPersister
	Timers    *TimerService
	tasks     []models.Task
	index     map[primitive.ObjectID]int
	mutations map[primitive.ObjectID]MutationState
}

func NewBoardService(persister TaskPersister, timers *TimerService) *BoardService {
	return &BoardService{
		Persister: persister,
		Timers:    timers,
		index:     make(map[primitive.ObjectID]int),
		mutations: make(map[primitive.ObjectID]MutationState),
	}
}

// Load osvežava ogledalo iz udaljenog sloja i vraća kopiju.
func (b *BoardService) Load(ctx context.Context) ([]models.Task, error) {
	tasks, err := b.Persister.GetAllTasks(ctx)
	if err != nil {
		return nil, err
	}

	b.mu.Lock()
	b.tasks = tasks
	b.reindex()
	// Zapisi o izmenama za taskove kojih više nema u kolekciji se čiste,
	// da ne prijavljuju stanje za obrisane taskove.
	for id := range b.mutations {
		if _, ok := b.index[id]; !ok {
			delete(b.mutations, id)
		}
	}
	snapshot := b.snapshotLocked()
	b.mu.Unlock()

	return snapshot, nil
}

// Snapshot vraća kopiju ogledala; pozivaoci nikad ne dobijaju interni slice.
func (b *BoardService) Snapshot() []models.Task {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.snapshotLocked()
}

// Lanes grupiše ogledalo u tri kolone, čuvajući redosled ogledala.
func (b *BoardService) Lanes() map[Lane][]models.Task {
	b.mu.Lock()
	defer b.mu.Unlock()

	lanes := map[Lane][]models.Task{
		LanePending:    {},
		LaneInProgress: {},
		LaneCompleted:  {},
	}
	for _, task := range b.tasks {
		lane := LaneForStatus(task.Status)
		lanes[lane] = append(lanes[lane], task)
	}
	return lanes
}

// MutationStateOf vraća stanje poslednje izmene nad taskom.
func (b *BoardService) MutationStateOf(taskID primitive.ObjectID) (MutationState, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	state, ok := b.mutations[taskID]
	return state, ok
}

// Create ide prvo na udaljeni sloj (id dodeljuje server), pa u ogledalo.
func (b *BoardService) Create(ctx context.Context, task models.Task, creator models.Identity) (*models.Task, error) {
	created, err := b.Persister.CreateTask(ctx, task, creator)
	if err != nil {
		return nil, err
	}

	b.mu.Lock()
	b.tasks = append([]models.Task{*created}, b.tasks...)
	b.reindex()
	b.mu.Unlock()

	return created, nil
}

// Update primenjuje izmenu optimistički, pa potvrđuje ili vraća unazad.
func (b *BoardService) Update(ctx context.Context, taskID primitive.ObjectID, update models.TaskUpdate) (*models.Task, error) {
	prev, ok := b.applyLocal(taskID, func(t *models.Task) { applyUpdate(t, update) })
	if !ok {
		return nil, apperrors.E(apperrors.KindNotFound, "task not in board view")
	}

	updated, err := b.Persister.UpdateTask(ctx, taskID, update)
	if err != nil {
		b.rollback(taskID, prev)
		return nil, err
	}

	b.confirm(taskID, *updated)
	return updated, nil
}

// SetStatus je Update sveden na status. Isti status je no-op bez upisa.
func (b *BoardService) SetStatus(ctx context.Context, taskID primitive.ObjectID, status models.TaskStatus) (*models.Task, bool, error) {
	b.mu.Lock()
	pos, ok := b.index[taskID]
	if !ok {
		b.mu.Unlock()
		return nil, false, apperrors.E(apperrors.KindNotFound, "task not in board view")
	}
	if b.tasks[pos].Status == status {
		current := b.tasks[pos]
		b.mu.Unlock()
		return &current, false, nil
	}
	b.mu.Unlock()

	prev, _ := b.applyLocal(taskID, func(t *models.Task) { t.Status = status })

	updated, err := b.Persister.ChangeTaskStatus(ctx, taskID, status)
	if err != nil {
		b.rollback(taskID, prev)
		return nil, false, err
	}

	b.confirm(taskID, *updated)
	return updated, true, nil
}

// Delete briše udaljeno pa lokalno i gasi eventualni merač za task.
func (b *BoardService) Delete(ctx context.Context, taskID primitive.ObjectID) error {
	if err := b.Persister.DeleteTask(ctx, taskID); err != nil {
		return err
	}

	b.mu.Lock()
	if pos, ok := b.index[taskID]; ok {
		b.tasks = append(b.tasks[:pos], b.tasks[pos+1:]...)
		b.reindex()
	}
	delete(b.mutations, taskID)
	b.mu.Unlock()

	if b.Timers != nil {
		b.Timers.Stop(taskID.Hex())
	}
	return nil
}

// ResolveDrop određuje odredišni status: prvo po drop-zone identifikatoru,
// a ako je task spušten na drugu karticu, nasleđuje njen status.
func (b *BoardService) ResolveDrop(zoneID string, targetTaskID *primitive.ObjectID) (models.TaskStatus, error) {
	if lane, ok := LaneFromZoneID(zoneID); ok {
		return lane.Status(), nil
	}

	if targetTaskID != nil {
		b.mu.Lock()
		defer b.mu.Unlock()
		if pos, ok := b.index[*targetTaskID]; ok {
			return b.tasks[pos].Status, nil
		}
	}

	return "", apperrors.E(apperrors.KindInvalidInput, "unknown drop destination")
}

// Drag prevodi potez prevlačenja u promenu statusa; spuštanje u istu kolonu
// ne proizvodi upis.
func (b *BoardService) Drag(ctx context.Context, taskID primitive.ObjectID, zoneID string, targetTaskID *primitive.ObjectID) (*models.Task, bool, error) {
	status, err := b.ResolveDrop(zoneID, targetTaskID)
	if err != nil {
		return nil, false, err
	}
	return b.SetStatus(ctx, taskID, status)
}

// StartTask je dugme "Start": samo za pending taskove; pokreće merač i
// prebacuje task u in-progress.
func (b *BoardService) StartTask(ctx context.Context, taskID primitive.ObjectID) (*models.Task, error) {
	if err := b.requireStatus(taskID, models.StatusPending); err != nil {
		return nil, err
	}

	b.Timers.Start(taskID.Hex())
	task, _, err := b.SetStatus(ctx, taskID, models.StatusInProgress)
	if err != nil {
		b.Timers.Stop(taskID.Hex())
		return nil, err
	}
	return task, nil
}

// CompleteTask je dugme "Complete": samo za in-progress; gasi merač, upisuje
// formatirano trajanje u actualTime i prebacuje task u completed.
func (b *BoardService) CompleteTask(ctx context.Context, taskID primitive.ObjectID) (*models.Task, error) {
	if err := b.requireStatus(taskID, models.StatusInProgress); err != nil {
		return nil, err
	}

	if elapsed, ok := b.Timers.Stop(taskID.Hex()); ok {
		actual := FormatDuration(elapsed)
		if _, err := b.Update(ctx, taskID, models.TaskUpdate{ActualTime: &actual}); err != nil {
			logging.Logger.Warnf("Event ID: ACTUAL_TIME_WRITE_FAILED, Description: Failed to persist actual time for task %s: %v", taskID.Hex(), err)
		}
	}

	task, _, err := b.SetStatus(ctx, taskID, models.StatusCompleted)
	return task, err
}

// ReopenTask je dugme "Reopen": samo za completed; vraća task u pending,
// progress ostaje netaknut.
func (b *BoardService) ReopenTask(ctx context.Context, taskID primitive.ObjectID) (*models.Task, error) {
	if err := b.requireStatus(taskID, models.StatusCompleted); err != nil {
		return nil, err
	}
	task, _, err := b.SetStatus(ctx, taskID, models.StatusPending)
	return task, err
}

func (b *BoardService) requireStatus(taskID primitive.ObjectID, want models.TaskStatus) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	pos, ok := b.index[taskID]
	if !ok {
		return apperrors.E(apperrors.KindNotFound, "task not in board view")
	}
	if b.tasks[pos].Status != want {
		return apperrors.E(apperrors.KindInvalidInput, "action not available for current task status")
	}
	return nil
}

func (b *BoardService) applyLocal(taskID primitive.ObjectID, apply func(*models.Task)) (models.Task, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	pos, ok := b.index[taskID]
	if !ok {
		return models.Task{}, false
	}
	prev := b.tasks[pos]
	apply(&b.tasks[pos])
	b.mutations[taskID] = MutationPending
	return prev, true
}

func (b *BoardService) rollback(taskID primitive.ObjectID, prev models.Task) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if pos, ok := b.index[taskID]; ok {
		b.tasks[pos] = prev
	}
	b.mutations[taskID] = MutationFailed
}

func (b *BoardService) confirm(taskID primitive.ObjectID, authoritative models.Task) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if pos, ok := b.index[taskID]; ok {
		b.tasks[pos] = authoritative
	}
	b.mutations[taskID] = MutationConfirmed
}

func (b *BoardService) reindex() {
	b.index = make(map[primitive.ObjectID]int, len(b.tasks))
	for i, task := range b.tasks {
		b.index[task.ID] = i
	}
}

func (b *BoardService) snapshotLocked() []models.Task {
	snapshot := make([]models.Task, len(b.tasks))
	copy(snapshot, b.tasks)
	return snapshot
}

func applyUpdate(t *models.Task, update models.TaskUpdate) {
	if update.Title != nil {
		t.Title = *update.Title
	}
	if update.Description != nil {
		t.Description = *update.Description
	}
	if update.Status != nil {
		t.Status = *update.Status
	}
	if update.Priority != nil {
		t.Priority = *update.Priority
	}
	if update.Progress != nil {
		t.Progress = *update.Progress
	}
	if update.Deadline != nil {
		t.Deadline = update.Deadline
	}
	if update.Assignees != nil {
		t.Assignees = *update.Assignees
	}
	if update.Tags != nil {
		t.Tags = *update.Tags
	}
	if update.ActualTime != nil {
		t.ActualTime = *update.ActualTime
	}
}
