package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"taskboard/handlers"
	"taskboard/logging"
	"taskboard/metrics"
	"taskboard/middleware"
	"taskboard/models"
	"taskboard/repositories"
	"taskboard/services"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func main() {
	logging.InitLogger()

	logging.Logger.Info("Event ID: SERVICE_START, Description: Starting taskboard service...")
	if err := godotenv.Load(".env"); err != nil {
		logging.Logger.Warnf("Event ID: ENV_LOAD_WARNING, Description: No .env file loaded: %v", err)
	}

	mongoURI := os.Getenv("MONGO_URI")
	mongoDBName := os.Getenv("MONGO_DB_NAME")
	if mongoDBName == "" {
		mongoDBName = "taskboard"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		logging.Logger.Fatalf("Event ID: DB_CONNECTION_FAILED, Description: Database connection for MongoDB failed: %v", err)
	}
	defer client.Disconnect(context.Background())

	if err := client.Ping(ctx, nil); err != nil {
		logging.Logger.Fatalf("Event ID: DB_PING_FAILED, Description: MongoDB connection ping error: %v", err)
	}
	logging.Logger.Infof("Event ID: DB_CONNECTED, Description: Successfully connected to MongoDB at %s.", mongoURI)

	db := client.Database(mongoDBName)
	usersCollection := db.Collection("users")
	authCollection := db.Collection("auth_users")
	tasksCollection := db.Collection("tasks")
	projectsCollection := db.Collection("projects")

	redisOpts, err := redis.ParseURL(os.Getenv("REDIS_URI"))
	if err != nil {
		logging.Logger.Fatalf("Event ID: REDIS_CONFIG_ERROR, Description: Invalid REDIS_URI: %v", err)
	}
	redisClient := redis.NewClient(redisOpts)
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logging.Logger.Fatalf("Event ID: REDIS_PING_FAILED, Description: Redis connection ping error: %v", err)
	}
	tokenBlacklist := services.NewTokenBlacklist(redisClient)

	blackList := map[string]bool{}
	if blackListFile := os.Getenv("BLACKLIST_FILE"); blackListFile != "" {
		blackList, err = services.LoadBlackList(blackListFile)
		if err != nil {
			logging.Logger.Fatalf("Event ID: BLACKLIST_LOAD_FAILED, Description: Failed to load password blacklist: %v", err)
		}
	}

	graphBreaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "workflow-graph-cb",
		MaxRequests: 1,
		Timeout:     2 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Logger.Infof("Event ID: CIRCUIT_BREAKER_STATE_CHANGE, Description: Circuit Breaker '%s' changed from '%s' to '%s'", name, from.String(), to.String())
		},
	})
	notifyBreaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "notifications-cb",
		MaxRequests: 1,
		Timeout:     5 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Logger.Infof("Event ID: CIRCUIT_BREAKER_STATE_CHANGE, Description: Circuit Breaker '%s' state changed from %s to %s", name, from.String(), to.String())
		},
	})

	// Graf zavisnosti je pomoćni: bez Neo4j konfiguracije servis radi dalje,
	// samo bez provere zavisnosti.
	var graph services.DependencyChecker
	var workflowService *services.WorkflowService
	if neo4jURI := os.Getenv("NEO4J_URI"); neo4jURI != "" {
		driver, err := neo4j.NewDriverWithContext(neo4jURI,
			neo4j.BasicAuth(os.Getenv("NEO4J_USER"), os.Getenv("NEO4J_PASS"), ""))
		if err != nil {
			logging.Logger.Fatalf("Event ID: NEO4J_CONNECTION_FAILED, Description: Neo4j driver creation failed: %v", err)
		}
		defer driver.Close(context.Background())
		workflowService = services.NewWorkflowService(driver)
		graph = workflowService
		logging.Logger.Info("Event ID: NEO4J_CONNECTED, Description: Workflow dependency graph enabled")
	}

	var notifier services.Notifier
	var notificationService *services.NotificationService
	if os.Getenv("CASS_DB") != "" {
		notificationRepo, err := repositories.NewNotificationRepo()
		if err != nil {
			logging.Logger.Fatalf("Event ID: CASS_CONNECTION_FAILED, Description: Cassandra connection failed: %v", err)
		}
		defer notificationRepo.CloseSession()
		notificationRepo.CreateTable()
		notificationService = services.NewNotificationService(notificationRepo)
		notifier = notificationService
		logging.Logger.Info("Event ID: NOTIFICATIONS_ENABLED, Description: Notification storage enabled")
	}

	userService := services.NewUserService(usersCollection, authCollection, blackList, os.Getenv("PRIMARY_ADMIN_EMAIL"))
	sessionService := services.NewSessionService(userService, userService, tokenBlacklist)
	taskService := services.NewTaskService(tasksCollection, usersCollection, graph, notifier, graphBreaker, notifyBreaker)
	projectService := services.NewProjectService(projectsCollection, tasksCollection)
	timerService := services.NewTimerService()
	defer timerService.Close()
	boardService := services.NewBoardService(taskService, timerService)

	loginHandler := handlers.NewLoginHandler(sessionService)
	userHandler := handlers.NewUserHandler(userService)
	taskHandler := handlers.NewTaskHandler(boardService, taskService)
	boardHandler := handlers.NewBoardHandler(boardService)
	projectHandler := handlers.NewProjectHandler(projectService)
	reportHandler := handlers.NewReportHandler(taskService, projectService, userService)

	auth := &middleware.AuthMiddleware{Sessions: sessionService}
	anyUser := []models.UserRole{models.RoleUser, models.RoleAdmin}
	adminOnly := []models.UserRole{models.RoleAdmin}

	r := mux.NewRouter()
	r.Use(metrics.Instrument)

	r.Handle("/api/login", http.HandlerFunc(loginHandler.Login)).Methods(http.MethodPost)
	r.Handle("/api/logout", http.HandlerFunc(loginHandler.Logout)).Methods(http.MethodPost)
	r.Handle("/api/session", auth.Require(http.HandlerFunc(loginHandler.Session), anyUser)).Methods(http.MethodGet)

	r.Handle("/api/tasks", auth.Require(http.HandlerFunc(taskHandler.GetAllTasks), anyUser)).Methods(http.MethodGet)
	r.Handle("/api/tasks", auth.Require(http.HandlerFunc(taskHandler.CreateTask), anyUser)).Methods(http.MethodPost)
	r.Handle("/api/tasks/status", auth.Require(http.HandlerFunc(taskHandler.ChangeTaskStatus), anyUser)).Methods(http.MethodPost)
	r.Handle("/api/tasks/{taskID}", auth.Require(http.HandlerFunc(taskHandler.GetTask), anyUser)).Methods(http.MethodGet)
	r.Handle("/api/tasks/{taskID}", auth.Require(http.HandlerFunc(taskHandler.UpdateTask), anyUser)).Methods(http.MethodPut)
	r.Handle("/api/tasks/{taskID}", auth.Require(http.HandlerFunc(taskHandler.DeleteTask), anyUser)).Methods(http.MethodDelete)
	r.Handle("/api/tasks/{taskID}/start", auth.Require(http.HandlerFunc(boardHandler.StartTask), anyUser)).Methods(http.MethodPost)
	r.Handle("/api/tasks/{taskID}/complete", auth.Require(http.HandlerFunc(boardHandler.CompleteTask), anyUser)).Methods(http.MethodPost)
	r.Handle("/api/tasks/{taskID}/reopen", auth.Require(http.HandlerFunc(boardHandler.ReopenTask), anyUser)).Methods(http.MethodPost)

	r.Handle("/api/board", auth.Require(http.HandlerFunc(boardHandler.GetBoard), anyUser)).Methods(http.MethodGet)
	r.Handle("/api/board/drag", auth.Require(http.HandlerFunc(boardHandler.Drag), anyUser)).Methods(http.MethodPost)
	r.Handle("/api/timers", auth.Require(http.HandlerFunc(boardHandler.GetActiveTimers), anyUser)).Methods(http.MethodGet)
	r.Handle("/api/timers/{taskID}", auth.Require(http.HandlerFunc(boardHandler.GetTimer), anyUser)).Methods(http.MethodGet)

	r.Handle("/api/projects", auth.Require(http.HandlerFunc(projectHandler.GetAllProjects), anyUser)).Methods(http.MethodGet)
	r.Handle("/api/projects", auth.Require(http.HandlerFunc(projectHandler.CreateProject), adminOnly)).Methods(http.MethodPost)
	r.Handle("/api/projects/{projectID}", auth.Require(http.HandlerFunc(projectHandler.GetProject), anyUser)).Methods(http.MethodGet)
	r.Handle("/api/projects/{projectID}", auth.Require(http.HandlerFunc(projectHandler.UpdateProject), adminOnly)).Methods(http.MethodPut)
	r.Handle("/api/projects/{projectID}", auth.Require(http.HandlerFunc(projectHandler.DeleteProject), adminOnly)).Methods(http.MethodDelete)
	r.Handle("/api/projects/{projectID}/members", auth.Require(http.HandlerFunc(projectHandler.AddMember), adminOnly)).Methods(http.MethodPost)
	r.Handle("/api/projects/{projectID}/members/{memberID}", auth.Require(http.HandlerFunc(projectHandler.RemoveMember), adminOnly)).Methods(http.MethodDelete)

	r.Handle("/api/users", auth.Require(http.HandlerFunc(userHandler.GetAllUsers), anyUser)).Methods(http.MethodGet)
	r.Handle("/api/users/change-password", auth.Require(http.HandlerFunc(userHandler.ChangePassword), anyUser)).Methods(http.MethodPost)
	r.Handle("/api/users/{userID}", auth.Require(http.HandlerFunc(userHandler.GetUser), anyUser)).Methods(http.MethodGet)
	r.Handle("/api/users/{userID}", auth.Require(http.HandlerFunc(userHandler.UpdateUser), adminOnly)).Methods(http.MethodPut)
	r.Handle("/api/users/{userID}", auth.Require(http.HandlerFunc(userHandler.DeleteUser), adminOnly)).Methods(http.MethodDelete)

	// Privilegovani kanal: servisni ključ umesto korisničkog tokena.
	r.Handle("/api/admin/users", middleware.ServiceKey(os.Getenv("SERVICE_KEY"), http.HandlerFunc(userHandler.CreateUser))).Methods(http.MethodPost)

	if workflowService != nil {
		workflowHandler := handlers.NewWorkflowHandler(workflowService)
		r.Handle("/api/workflow/dependency", auth.Require(http.HandlerFunc(workflowHandler.AddDependency), adminOnly)).Methods(http.MethodPost)
		r.Handle("/api/workflow/dependency", auth.Require(http.HandlerFunc(workflowHandler.RemoveDependency), adminOnly)).Methods(http.MethodDelete)
		r.Handle("/api/workflow/{taskID}", auth.Require(http.HandlerFunc(workflowHandler.GetDependencies), anyUser)).Methods(http.MethodGet)
	}

	if notificationService != nil {
		notificationHandler := handlers.NewNotificationHandler(notificationService)
		r.Handle("/api/notifications", auth.Require(http.HandlerFunc(notificationHandler.GetNotifications), anyUser)).Methods(http.MethodGet)
		r.Handle("/api/notifications/read", auth.Require(http.HandlerFunc(notificationHandler.MarkAsRead), anyUser)).Methods(http.MethodPost)
		r.Handle("/api/notifications/delete", auth.Require(http.HandlerFunc(notificationHandler.DeleteNotification), anyUser)).Methods(http.MethodPost)
	}

	r.Handle("/api/reports/summary", auth.Require(http.HandlerFunc(reportHandler.Summary), anyUser)).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	corsRouter := middleware.EnableCORS(r)

	serverPort := os.Getenv("SERVER_PORT")
	if serverPort == "" {
		logging.Logger.Fatalf("Event ID: CONFIG_ERROR, Description: SERVER_PORT is not set in the environment variables.")
	}

	serverAddress := fmt.Sprintf(":%s", serverPort)
	logging.Logger.Infof("Event ID: SERVER_START_INFO, Description: Server running on http://localhost%s", serverAddress)

	srv := &http.Server{
		Addr:         serverAddress,
		Handler:      corsRouter,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		logging.Logger.Fatalf("Event ID: SERVER_FATAL_ERROR, Description: Server failed to start: %v", err)
	}
}
