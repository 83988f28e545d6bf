package app

import (
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"gopkg.in/telebot.v4"

	"github.com/tma-tanlov/backend/internal/app/handlers/http/application_types_handler"
	"github.com/tma-tanlov/backend/internal/app/handlers/http/attach_file_handler"
	"github.com/tma-tanlov/backend/internal/app/handlers/http/disqualified_handler"
	"github.com/tma-tanlov/backend/internal/app/handlers/http/finish_test_handler"
	"github.com/tma-tanlov/backend/internal/app/handlers/http/generate_invite_handler"
	"github.com/tma-tanlov/backend/internal/app/handlers/http/leaderboard_export_handler"
	"github.com/tma-tanlov/backend/internal/app/handlers/http/my_applications_handler"
	"github.com/tma-tanlov/backend/internal/app/handlers/http/next_question_handler"
	"github.com/tma-tanlov/backend/internal/app/handlers/http/profile_handler"
	"github.com/tma-tanlov/backend/internal/app/handlers/http/quiz_upload_handler"
	"github.com/tma-tanlov/backend/internal/app/handlers/http/result_pdf_handler"
	"github.com/tma-tanlov/backend/internal/app/handlers/http/resume_session_handler"
	"github.com/tma-tanlov/backend/internal/app/handlers/http/review_applications_handler"
	"github.com/tma-tanlov/backend/internal/app/handlers/http/score_item_handler"
	"github.com/tma-tanlov/backend/internal/app/handlers/http/sections_handler"
	"github.com/tma-tanlov/backend/internal/app/handlers/http/start_test_handler"
	"github.com/tma-tanlov/backend/internal/app/handlers/http/student_login_handler"
	"github.com/tma-tanlov/backend/internal/app/handlers/http/submit_answer_handler"
	"github.com/tma-tanlov/backend/internal/app/handlers/http/submit_application_handler"
	"github.com/tma-tanlov/backend/internal/app/handlers/http/tests_list_handler"
	"github.com/tma-tanlov/backend/internal/app/handlers/telegram/result_handler"
	"github.com/tma-tanlov/backend/internal/app/handlers/telegram/start_handler"
	"github.com/tma-tanlov/backend/internal/bot"
	"github.com/tma-tanlov/backend/internal/bot/middleware"
	"github.com/tma-tanlov/backend/internal/domain/auth"
	"github.com/tma-tanlov/backend/internal/domain/hemis"
	"github.com/tma-tanlov/backend/internal/infra/config"

	applicationsRepo "github.com/tma-tanlov/backend/internal/domain/applications/repository"
	applicationsService "github.com/tma-tanlov/backend/internal/domain/applications/service"
	studentsRepo "github.com/tma-tanlov/backend/internal/domain/students/repository"
	studentsService "github.com/tma-tanlov/backend/internal/domain/students/service"
	testsRepo "github.com/tma-tanlov/backend/internal/domain/tests/repository"
	testsService "github.com/tma-tanlov/backend/internal/domain/tests/service"
)

type Services struct {
	studentService     *studentsService.StudentService
	testService        *testsService.TestService
	applicationService *applicationsService.ApplicationService
}

type App struct {
	config     *config.Config
	bot        *telebot.Bot
	db         *pgxpool.Pool
	server     *http.Server
	jwtManager *auth.Manager
	botStore   bot.Store

	Services
}

func NewApp(configPath string) (*App, error) {
	configImpl, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("config.LoadConfig: %w", err)
	}

	db, err := InitDatabase(configImpl)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	app := &App{
		config:     configImpl,
		db:         db,
		jwtManager: auth.NewManager(configImpl.JWT.Secret, configImpl.JWT.TTLMinutes),
		botStore:   bot.NewStore(configImpl.TelegramBot.StorageType, configImpl.TelegramBot.StateFile),
	}

	app.initServices()

	return app, nil
}

// Функция для инициализации сервисов и репозиториев
func (app *App) initServices() {
	// Инициализация репозиториев
	studentRepo := studentsRepo.NewStudentRepository(app.db)
	testRepo := testsRepo.NewTestRepository(app.db)
	applicationRepo := applicationsRepo.NewApplicationRepository(app.db)

	hemisClient := hemis.NewClient(app.config.Hemis.BaseURL)

	// Инициализация сервисов
	app.studentService = studentsService.NewStudentService(studentRepo, hemisClient)
	app.testService = testsService.NewTestService(testRepo, app.studentService)
	app.applicationService = applicationsService.NewApplicationService(applicationRepo, app.studentService, app.testService)
}

// ListenAndServeTelegram запускает бот результатов
func (app *App) ListenAndServeTelegram() error {
	b, err := telebot.NewBot(telebot.Settings{
		Token:  app.config.TelegramBot.Token,
		Poller: &telebot.LongPoller{Timeout: 10 * time.Second},
	})
	if err != nil {
		return fmt.Errorf("telebot.NewBot: %w", err)
	}
	app.bot = b

	app.bootstrapHandlersTelegram()

	go app.bot.Start()

	return nil
}

// bootstrapHandlersTelegram - регистрирует обработчики для бота
func (app *App) bootstrapHandlersTelegram() {
	app.bot.Use(middleware.Recover())
	app.bot.Use(middleware.Logger())

	app.bot.Handle("/start", start_handler.NewStartHandler(app.botStore).GetHandlerFunc())

	// Любой текст трактуется как HEMIS ID, если диалог этого ждёт
	app.bot.Handle(telebot.OnText, result_handler.NewResultHandler(app.botStore, app.applicationService).GetHandlerFunc())
}

// ListenAndServeHTTP запускает HTTP сервер
func (app *App) ListenAndServeHTTP() error {
	mx := http.NewServeMux()

	// Авторизация и профиль студента
	mx.Handle("POST /auth/login", student_login_handler.NewStudentLoginHandler(app.studentService, app.jwtManager))
	mx.Handle("GET /me", profile_handler.NewProfileHandler(app.studentService, app.jwtManager))
	mx.Handle("GET /me/applications", my_applications_handler.NewMyApplicationsHandler(app.applicationService, app.jwtManager))
	mx.Handle("GET /me/result.pdf", result_pdf_handler.NewResultPDFHandler(app.applicationService, app.studentService, app.jwtManager))

	// Тестирование
	mx.Handle("GET /tests", tests_list_handler.NewTestsListHandler(app.testService, app.jwtManager))
	mx.Handle("POST /tests/{id}/start", start_test_handler.NewStartTestHandler(app.testService, app.studentService, app.jwtManager))
	mx.Handle("GET /tests/{id}/session", resume_session_handler.NewResumeSessionHandler(app.testService, app.jwtManager))
	mx.Handle("GET /sessions/{id}/next", next_question_handler.NewNextQuestionHandler(app.testService, app.jwtManager))
	mx.Handle("POST /sessions/{id}/answers", submit_answer_handler.NewSubmitAnswerHandler(app.testService, app.jwtManager))
	mx.Handle("POST /sessions/{id}/finish", finish_test_handler.NewFinishTestHandler(app.testService, app.jwtManager))

	// Конкурс и заявки
	sections := sections_handler.NewSectionsHandler(app.applicationService, app.jwtManager)
	mx.Handle("GET /sections", http.HandlerFunc(sections.List))
	mx.Handle("GET /sections/{id}/directions", http.HandlerFunc(sections.Directions))
	mx.Handle("GET /application-types", application_types_handler.NewApplicationTypesHandler(app.applicationService, app.jwtManager))
	mx.Handle("POST /applications", submit_application_handler.NewSubmitApplicationHandler(app.applicationService, app.jwtManager))
	mx.Handle("POST /items/{id}/files", attach_file_handler.NewAttachFileHandler(app.applicationService, app.jwtManager, app.config.Uploads.Dir))

	// Администрирование
	mx.Handle("POST /admin/tests/upload", quiz_upload_handler.NewQuizUploadHandler(app.testService, app.jwtManager))
	mx.Handle("GET /admin/applications", review_applications_handler.NewReviewApplicationsHandler(app.applicationService, app.jwtManager))
	mx.Handle("POST /admin/items/{id}/score", score_item_handler.NewScoreItemHandler(app.applicationService, app.jwtManager))
	mx.Handle("GET /admin/leaderboard/{type}/export", leaderboard_export_handler.NewLeaderboardExportHandler(app.applicationService, app.jwtManager))
	qrDir := filepath.Join(app.config.Uploads.Dir, "qr")
	mx.Handle("POST /admin/invites", generate_invite_handler.NewGenerateInviteHandler(app.jwtManager, app.config.TelegramBot.Username, app.config.Server.BaseURL, qrDir))

	registry := disqualified_handler.NewDisqualifiedHandler(app.studentService, app.jwtManager)
	mx.Handle("GET /admin/disqualified", http.HandlerFunc(registry.List))
	mx.Handle("POST /admin/disqualified", http.HandlerFunc(registry.Add))
	mx.Handle("DELETE /admin/disqualified/{hemis_id}", http.HandlerFunc(registry.Remove))

	// Раздача сгенерированных QR-кодов, только из каталога qrDir
	mx.Handle("GET /qr/", http.StripPrefix("/qr/", http.FileServer(http.Dir(qrDir))))

	app.server = &http.Server{
		Addr:    fmt.Sprintf("%s:%s", app.config.Server.Host, app.config.Server.Port),
		Handler: mx,
	}

	return app.server.ListenAndServe()
}

// ListenAndServe запускает оба сервера (Telegram и HTTP)
func (app *App) ListenAndServe() error {
	if err := app.ListenAndServeTelegram(); err != nil {
		return fmt.Errorf("failed to start Telegram bot: %w", err)
	}

	if err := app.ListenAndServeHTTP(); err != nil {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	return nil
}
