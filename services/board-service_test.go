package services

import (
	"context"
	"testing"
	"time"

	"taskboard/apperrors"
	"taskboard/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// fakePersister imitira udaljeni sloj taskova u memoriji.
type fakePersister struct {
	tasks       map[primitive.ObjectID]models.Task
	order       []primitive.ObjectID
	failNext    error
	writeCalls  int
	statusCalls int
}

func newFakePersister() *fakePersister {
	return &fakePersister{tasks: make(map[primitive.ObjectID]models.Task)}
}

func (f *fakePersister) seed(task models.Task) models.Task {
	if task.ID.IsZero() {
		task.ID = primitive.NewObjectID()
	}
	f.tasks[task.ID] = task
	f.order = append(f.order, task.ID)
	return task
}

func (f *fakePersister) takeErr() error {
	err := f.failNext
	f.failNext = nil
	return err
}

func (f *fakePersister) GetAllTasks(ctx context.Context) ([]models.Task, error) {
	if err := f.takeErr(); err != nil {
		return nil, err
	}
	tasks := make([]models.Task, 0, len(f.order))
	for _, id := range f.order {
		tasks = append(tasks, f.tasks[id])
	}
	return tasks, nil
}

func (f *fakePersister) CreateTask(ctx context.Context, task models.Task, creator models.Identity) (*models.Task, error) {
	if err := f.takeErr(); err != nil {
		return nil, err
	}
	f.writeCalls++
	if task.Status == "" {
		task.Status = models.StatusPending
	}
	if task.Priority == "" {
		task.Priority = models.PriorityMedium
	}
	task.CreatedBy = creator.ID
	created := f.seed(task)
	return &created, nil
}

func (f *fakePersister) UpdateTask(ctx context.Context, taskID primitive.ObjectID, update models.TaskUpdate) (*models.Task, error) {
	if err := f.takeErr(); err != nil {
		return nil, err
	}
	f.writeCalls++
	task, ok := f.tasks[taskID]
	if !ok {
		return nil, apperrors.E(apperrors.KindNotFound, "task not found")
	}
	applyUpdate(&task, update)
	f.tasks[taskID] = task
	return &task, nil
}

func (f *fakePersister) ChangeTaskStatus(ctx context.Context, taskID primitive.ObjectID, status models.TaskStatus) (*models.Task, error) {
	if err := f.takeErr(); err != nil {
		return nil, err
	}
	f.writeCalls++
	f.statusCalls++
	task, ok := f.tasks[taskID]
	if !ok {
		return nil, apperrors.E(apperrors.KindNotFound, "task not found")
	}
	task.Status = status
	f.tasks[taskID] = task
	return &task, nil
}

func (f *fakePersister) DeleteTask(ctx context.Context, taskID primitive.ObjectID) error {
	if err := f.takeErr(); err != nil {
		return err
	}
	f.writeCalls++
	delete(f.tasks, taskID)
	for i, id := range f.order {
		if id == taskID {
			f.order = append(f.order[:i], f.order[i+1:]...)
			break
		}
	}
	return nil
}

func newTestBoard(t *testing.T, persister *fakePersister) *BoardService {
	t.Helper()
	timers, clock := newTestTimerService(time.Date(2024, 11, 20, 10, 0, 0, 0, time.UTC))
	t.Cleanup(timers.Close)
	board := NewBoardService(persister, timers)
	_ = clock
	_, err := board.Load(context.Background())
	require.NoError(t, err)
	return board
}

func TestBoardLanes(t *testing.T) {
	persister := newFakePersister()
	persister.seed(models.Task{Title: "Prvi", Status: models.StatusPending})
	persister.seed(models.Task{Title: "Drugi", Status: models.StatusInProgress})
	persister.seed(models.Task{Title: "Treći", Status: models.StatusCompleted})
	persister.seed(models.Task{Title: "Četvrti", Status: models.StatusPending})
	board := newTestBoard(t, persister)

	lanes := board.Lanes()

	assert.Len(t, lanes[LanePending], 2)
	assert.Len(t, lanes[LaneInProgress], 1)
	assert.Len(t, lanes[LaneCompleted], 1)
	assert.Equal(t, "Prvi", lanes[LanePending][0].Title)
	assert.Equal(t, "Četvrti", lanes[LanePending][1].Title)
}

func TestBoardCreatePrepends(t *testing.T) {
	persister := newFakePersister()
	persister.seed(models.Task{Title: "Stari", Status: models.StatusPending})
	board := newTestBoard(t, persister)

	created, err := board.Create(context.Background(), models.Task{Title: "Novi"}, models.Identity{ID: primitive.NewObjectID()})
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, created.Status)
	assert.Equal(t, models.PriorityMedium, created.Priority)

	snapshot := board.Snapshot()
	require.Len(t, snapshot, 2)
	assert.Equal(t, "Novi", snapshot[0].Title)
}

func TestBoardSetStatusPersistsAndConfirms(t *testing.T) {
	persister := newFakePersister()
	task := persister.seed(models.Task{Title: "Task", Status: models.StatusPending})
	board := newTestBoard(t, persister)

	updated, moved, err := board.SetStatus(context.Background(), task.ID, models.StatusInProgress)
	require.NoError(t, err)
	assert.True(t, moved)
	assert.Equal(t, models.StatusInProgress, updated.Status)
	assert.Equal(t, models.StatusInProgress, persister.tasks[task.ID].Status)

	state, ok := board.MutationStateOf(task.ID)
	assert.True(t, ok)
	assert.Equal(t, MutationConfirmed, state)
}

func TestBoardSetStatusSameLaneNoWrite(t *testing.T) {
	persister := newFakePersister()
	task := persister.seed(models.Task{Title: "Task", Status: models.StatusPending})
	board := newTestBoard(t, persister)

	updated, moved, err := board.SetStatus(context.Background(), task.ID, models.StatusPending)
	require.NoError(t, err)
	assert.False(t, moved)
	assert.Equal(t, models.StatusPending, updated.Status)
	assert.Equal(t, 0, persister.writeCalls)
}

func TestBoardSetStatusRollbackOnFailure(t *testing.T) {
	persister := newFakePersister()
	task := persister.seed(models.Task{Title: "Task", Status: models.StatusPending})
	board := newTestBoard(t, persister)

	persister.failNext = apperrors.E(apperrors.KindUnavailable, "write failed")
	_, _, err := board.SetStatus(context.Background(), task.ID, models.StatusCompleted)
	require.Error(t, err)

	// Ogledalo se vraća na stanje pre izmene.
	snapshot := board.Snapshot()
	assert.Equal(t, models.StatusPending, snapshot[0].Status)
	assert.Equal(t, models.StatusPending, persister.tasks[task.ID].Status)

	state, ok := board.MutationStateOf(task.ID)
	assert.True(t, ok)
	assert.Equal(t, MutationFailed, state)
}

func TestBoardUpdateRollbackOnFailure(t *testing.T) {
	persister := newFakePersister()
	task := persister.seed(models.Task{Title: "Originalni naslov", Status: models.StatusPending})
	board := newTestBoard(t, persister)

	newTitle := "Izmenjeni naslov"
	persister.failNext = apperrors.E(apperrors.KindUnavailable, "write failed")
	_, err := board.Update(context.Background(), task.ID, models.TaskUpdate{Title: &newTitle})
	require.Error(t, err)

	snapshot := board.Snapshot()
	assert.Equal(t, "Originalni naslov", snapshot[0].Title)
}

func TestBoardDeleteStopsTimer(t *testing.T) {
	persister := newFakePersister()
	task := persister.seed(models.Task{Title: "Task", Status: models.StatusPending})
	board := newTestBoard(t, persister)
	board.Timers.Start(task.ID.Hex())

	err := board.Delete(context.Background(), task.ID)
	require.NoError(t, err)

	assert.Empty(t, board.Snapshot())
	_, ok := board.Timers.Elapsed(task.ID.Hex())
	assert.False(t, ok)
}

func TestBoardLoadPrunesStaleMutations(t *testing.T) {
	persister := newFakePersister()
	task := persister.seed(models.Task{Title: "Task", Status: models.StatusPending})
	board := newTestBoard(t, persister)

	_, _, err := board.SetStatus(context.Background(), task.ID, models.StatusInProgress)
	require.NoError(t, err)
	_, ok := board.MutationStateOf(task.ID)
	require.True(t, ok)

	// Task nestaje iz kolekcije mimo table (npr. obrisan drugim putem).
	require.NoError(t, persister.DeleteTask(context.Background(), task.ID))
	_, err = board.Load(context.Background())
	require.NoError(t, err)

	_, ok = board.MutationStateOf(task.ID)
	assert.False(t, ok)
}

func TestBoardResolveDrop(t *testing.T) {
	persister := newFakePersister()
	target := persister.seed(models.Task{Title: "Meta", Status: models.StatusInProgress})
	board := newTestBoard(t, persister)

	// Poznata drop-zona ima prednost.
	status, err := board.ResolveDrop("lane-completed", &target.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, status)

	// Spuštanje na karticu nasleđuje njen status.
	status, err = board.ResolveDrop("task-card-42", &target.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, status)

	// Nepoznata destinacija bez ciljne kartice je greška.
	_, err = board.ResolveDrop("nepoznata-zona", nil)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindInvalidInput, apperrors.KindOf(err))
}

func TestBoardDragSameLaneNoOp(t *testing.T) {
	persister := newFakePersister()
	task := persister.seed(models.Task{Title: "Task", Status: models.StatusInProgress})
	board := newTestBoard(t, persister)

	_, moved, err := board.Drag(context.Background(), task.ID, "lane-in-progress", nil)
	require.NoError(t, err)
	assert.False(t, moved)
	assert.Equal(t, 0, persister.statusCalls)
}

func TestBoardStartTask(t *testing.T) {
	persister := newFakePersister()
	task := persister.seed(models.Task{Title: "Task", Status: models.StatusPending})
	board := newTestBoard(t, persister)

	started, err := board.StartTask(context.Background(), task.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, started.Status)

	_, ok := board.Timers.Elapsed(task.ID.Hex())
	assert.True(t, ok)

	// Start nije dozvoljen za task koji nije pending.
	_, err = board.StartTask(context.Background(), task.ID)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindInvalidInput, apperrors.KindOf(err))
}

func TestBoardStartTaskRollsBackTimerOnFailure(t *testing.T) {
	persister := newFakePersister()
	task := persister.seed(models.Task{Title: "Task", Status: models.StatusPending})
	board := newTestBoard(t, persister)

	persister.failNext = apperrors.E(apperrors.KindUnavailable, "write failed")
	_, err := board.StartTask(context.Background(), task.ID)
	require.Error(t, err)

	_, ok := board.Timers.Elapsed(task.ID.Hex())
	assert.False(t, ok)
}

func TestBoardCompleteTaskWritesActualTime(t *testing.T) {
	persister := newFakePersister()
	task := persister.seed(models.Task{Title: "Task", Status: models.StatusPending})
	board := newTestBoard(t, persister)

	clock := time.Date(2024, 11, 20, 10, 0, 0, 0, time.UTC)
	board.Timers.now = func() time.Time { return clock }

	_, err := board.StartTask(context.Background(), task.ID)
	require.NoError(t, err)

	clock = clock.Add(95 * time.Second)
	completed, err := board.CompleteTask(context.Background(), task.ID)
	require.NoError(t, err)

	assert.Equal(t, models.StatusCompleted, completed.Status)
	assert.Equal(t, "0h 1m 35s", persister.tasks[task.ID].ActualTime)
	_, ok := board.Timers.Elapsed(task.ID.Hex())
	assert.False(t, ok)
}

func TestBoardCompleteRequiresInProgress(t *testing.T) {
	persister := newFakePersister()
	task := persister.seed(models.Task{Title: "Task", Status: models.StatusPending})
	board := newTestBoard(t, persister)

	_, err := board.CompleteTask(context.Background(), task.ID)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindInvalidInput, apperrors.KindOf(err))
}

func TestBoardReopenTask(t *testing.T) {
	persister := newFakePersister()
	task := persister.seed(models.Task{Title: "Task", Status: models.StatusCompleted, Progress: 80})
	board := newTestBoard(t, persister)

	reopened, err := board.ReopenTask(context.Background(), task.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, reopened.Status)
	// Progress ostaje kakav je bio.
	assert.Equal(t, 80, reopened.Progress)
}

// Ceo životni ciklus jednog taska kroz tablu.
func TestBoardTaskLifecycle(t *testing.T) {
	persister := newFakePersister()
	board := newTestBoard(t, persister)

	created, err := board.Create(context.Background(), models.Task{Title: "Nova funkcionalnost"}, models.Identity{ID: primitive.NewObjectID()})
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, created.Status)

	_, err = board.StartTask(context.Background(), created.ID)
	require.NoError(t, err)

	// Prevlačenje nazad u pending pa opet napred.
	_, moved, err := board.Drag(context.Background(), created.ID, "lane-pending", nil)
	require.NoError(t, err)
	assert.True(t, moved)

	_, moved, err = board.Drag(context.Background(), created.ID, "lane-in-progress", nil)
	require.NoError(t, err)
	assert.True(t, moved)

	completed, err := board.CompleteTask(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, completed.Status)

	lanes := board.Lanes()
	assert.Len(t, lanes[LaneCompleted], 1)
	assert.Empty(t, lanes[LanePending])
	assert.Empty(t, lanes[LaneInProgress])
}
