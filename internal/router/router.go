package router

import (
	"time"

	"github.com/LuizNicolao/terceirize-foods-sub002/internal/config"
	"github.com/LuizNicolao/terceirize-foods-sub002/internal/handler"
	"github.com/LuizNicolao/terceirize-foods-sub002/internal/infra"
	"github.com/LuizNicolao/terceirize-foods-sub002/internal/middleware"
	"github.com/LuizNicolao/terceirize-foods-sub002/internal/repository"
	"github.com/LuizNicolao/terceirize-foods-sub002/internal/service"
	"github.com/LuizNicolao/terceirize-foods-sub002/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, logisticaCB *infra.CircuitBreaker) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Infrastructure ───────────────────────────────────────────────────────
	recomputoLock := infra.NewRedisRecomputoLock(rdb)

	// ── Repositories ─────────────────────────────────────────────────────────
	calendarioRepo := repository.NewCalendarioRepository(db)
	perCapitaRepo := repository.NewProdutoPerCapitaRepository(db)
	registroRepo := repository.NewRegistroDiarioRepository(db)
	necessidadeRepo := repository.NewNecessidadeRepository(db)
	ajusteRepo := repository.NewAjusteRepository(db)
	substituicaoRepo := repository.NewSubstituicaoRepository(db)

	// Worker dispatcher — injected into services that enqueue async jobs
	dispatcher := worker.NewDispatcher(rdb)

	// ── Services ─────────────────────────────────────────────────────────────
	calculoSvc := service.NewCalculoService(registroRepo, cfg.MediaSemanasJanela)
	calendarioSvc := service.NewCalendarioService(calendarioRepo, necessidadeRepo, recomputoLock)
	necessidadeSvc := service.NewNecessidadeService(
		necessidadeRepo, calendarioRepo, perCapitaRepo, ajusteRepo, substituicaoRepo,
		calculoSvc, recomputoLock, dispatcher,
	)
	substituicaoSvc := service.NewSubstituicaoService(substituicaoRepo, necessidadeRepo, perCapitaRepo, ajusteRepo, recomputoLock)
	perCapitaSvc := service.NewPerCapitaService(perCapitaRepo)

	// ── Handlers ─────────────────────────────────────────────────────────────
	calendarioH := handler.NewCalendarioHandler(calendarioSvc)
	necessidadesH := handler.NewNecessidadesHandler(necessidadeSvc, substituicaoSvc)
	substituicoesH := handler.NewSubstituicoesHandler(substituicaoSvc)
	perCapitaH := handler.NewPerCapitaHandler(perCapitaSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb, logisticaCB))

	// Protected routes — roles: nutricionista, coordenacao, logistica, administrador
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	v1 := r.Group("/v1", jwtMW)
	{
		todos := middleware.RequireRole("nutricionista", "coordenacao", "logistica", "administrador")

		cal := v1.Group("/calendario")
		{
			cal.GET("/:ano", todos, calendarioH.ObterConfiguracao)
			cal.GET("/:ano/semanas", todos, calendarioH.ListarSemanas)
			// Writes reshape the planning base for every role downstream
			cal.PUT("/:ano/classificacao", middleware.RequireRole("administrador"), calendarioH.ClassificarAno)
			cal.POST("/:ano/semanas/recomputar", middleware.RequireRole("administrador"), calendarioH.RecomputarSemanas)
			cal.POST("/feriados", middleware.RequireRole("administrador"), calendarioH.AdicionarFeriado)
			cal.DELETE("/feriados/:data", middleware.RequireRole("administrador"), calendarioH.RemoverFeriado)
		}

		nec := v1.Group("/necessidades")
		{
			nec.GET("", todos, necessidadesH.Listar)
			nec.GET("/:id", todos, necessidadesH.Obter)
			nec.GET("/:id/ajustes", todos, necessidadesH.ListarAjustes)
			nec.GET("/:id/substituicoes", todos, necessidadesH.ListarSubstituicoes)

			nec.POST("", middleware.RequireRole("nutricionista", "administrador"), necessidadesH.CriarRascunho)
			nec.POST("/:id/itens", middleware.RequireRole("nutricionista", "administrador"), necessidadesH.IncluirProdutoExtra)
			nec.POST("/:id/enviar", middleware.RequireRole("nutricionista", "administrador"), necessidadesH.Enviar)

			// The stage guard inside the service decides which etapa may adjust;
			// the role gate here only keeps read-only roles out.
			nec.PUT("/:id/itens/:itemId", middleware.RequireRole("nutricionista", "coordenacao", "logistica", "administrador"), necessidadesH.AjustarItem)

			nec.POST("/:id/liberar", middleware.RequireRole("logistica", "administrador"), necessidadesH.Liberar)
			nec.POST("/:id/rejeitar", middleware.RequireRole("coordenacao", "logistica", "administrador"), necessidadesH.Rejeitar)
			nec.POST("/:id/revalidar", middleware.RequireRole("nutricionista", "coordenacao", "administrador"), necessidadesH.Revalidar)
		}

		sub := v1.Group("/substituicoes")
		{
			sub.GET("/candidatos", todos, substituicoesH.Candidatos)
			sub.POST("", middleware.RequireRole("coordenacao", "logistica", "administrador"), substituicoesH.Propor)
			sub.POST("/:id/resolver", middleware.RequireRole("coordenacao", "administrador"), substituicoesH.Resolver)
		}

		v1.GET("/per-capita", todos, perCapitaH.Listar)
		v1.GET("/per-capita/:produtoId", todos, perCapitaH.Obter)
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
