package cmd

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/stacked-drg/porep-verifier/store"
	"github.com/stacked-drg/porep-verifier/types"
	"github.com/stacked-drg/porep-verifier/verifier"
	"golang.org/x/xerrors"
)

var fListen string

var webAPICmd = &cobra.Command{
	Use:   "web-api",
	Short: "runs a web server verifying proofs and accepting round submissions",
	Run:   runApi,
}

func healthCheck(c *gin.Context) {
	response := gin.H{
		"status":  "ok",
		"message": "Health check passed",
	}

	c.JSON(http.StatusOK, response)
}

func statusOf(err error) int {
	var cfgErr *verifier.ConfigurationError
	var decErr *verifier.DeserializationError
	switch {
	case xerrors.Is(err, store.ErrNotFound), xerrors.Is(err, store.ErrNoRound):
		return http.StatusNotFound
	case xerrors.Is(err, store.ErrAlreadySubmitted), xerrors.Is(err, store.ErrRoundExists):
		return http.StatusConflict
	case xerrors.Is(err, verifier.ErrProverMismatch):
		return http.StatusForbidden
	case xerrors.Is(err, verifier.ErrRoundExpired), xerrors.Is(err, verifier.ErrProofRejected),
		xerrors.As(err, &cfgErr), xerrors.As(err, &decErr):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func abort(c *gin.Context, err error) {
	c.JSON(statusOf(err), gin.H{"error": err.Error()})
}

func verifyProof(svc *verifier.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var raw types.VerifyProofRaw
		if err := c.ShouldBindJSON(&raw); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		req, err := verifier.RequestFromRaw(raw)
		if err != nil {
			abort(c, err)
			return
		}
		start := time.Now()
		out, err := svc.VerifyProof(c.Request.Context(), req)
		if err != nil {
			abort(c, err)
			return
		}
		elapsed := time.Since(start)
		log.Debug().Msg("Successfully verified proof, time: " + elapsed.String())

		c.JSON(http.StatusOK, gin.H{
			"verified": out.Verdict(),
			"state":    out.State.String(),
		})
	}
}

func submitProof(svc *verifier.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var raw types.SubmitProofRaw
		if err := c.ShouldBindJSON(&raw); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if raw.User == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "user is required"})
			return
		}
		req, err := verifier.RequestFromRaw(raw.VerifyProofRaw)
		if err != nil {
			abort(c, err)
			return
		}
		reward, err := svc.SubmitProof(c.Request.Context(), raw.User, req)
		if err != nil {
			abort(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"user": raw.User, "reward": reward})
	}
}

func requireToken(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token == "" {
			c.Next()
			return
		}
		if c.GetHeader("Authorization") != "Bearer "+token {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Next()
	}
}

func setParams(svc *verifier.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var raw types.SetVerifierParamsRaw
		if err := c.ShouldBindJSON(&raw); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		vp, err := types.DeserializeVerifierParameters(raw.Params)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		round, err := svc.SetParams(c.Request.Context(), raw.SectorSize, vp, time.Duration(raw.Duration)*time.Second)
		if err != nil {
			abort(c, err)
			return
		}
		c.JSON(http.StatusOK, round)
	}
}

func activeRound(svc *verifier.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		round, err := svc.ActiveRound(c.Request.Context())
		if err != nil {
			abort(c, err)
			return
		}
		c.JSON(http.StatusOK, round)
	}
}

func reward(svc *verifier.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := c.Param("user")
		r, err := svc.Reward(c.Request.Context(), user)
		if err != nil {
			abort(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"user": user, "reward": r})
	}
}

const (
	defaultUsersLimit = 10
	maxUsersLimit     = 30
)

func users(svc *verifier.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := defaultUsersLimit
		if s := c.Query("limit"); s != "" {
			l, err := strconv.Atoi(s)
			if err != nil || l <= 0 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
				return
			}
			limit = l
		}
		if limit > maxUsersLimit {
			limit = maxUsersLimit
		}
		list, err := svc.Users(c.Request.Context(), limit, strings.TrimSpace(c.Query("start_after")))
		if err != nil {
			abort(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"users": list})
	}
}

func newRouter(svc *verifier.Service, adminToken string) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.GET("/health", healthCheck)
	router.POST("/verify", verifyProof(svc))
	router.POST("/submit", submitProof(svc))
	router.POST("/params", requireToken(adminToken), setParams(svc))
	router.GET("/round", activeRound(svc))
	router.GET("/reward/:user", reward(svc))
	router.GET("/users", users(svc))
	return router
}

func runApi(cmd *cobra.Command, args []string) {
	n, err := openNode()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open datastore")
	}
	defer n.Close()

	listen := cfg.API.Listen
	if cmd.Flags().Changed("listen") {
		listen = fListen
	}
	if cfg.API.AdminToken == "" {
		log.Warn().Msg("api.admin_token is not set, anyone can register verifier params")
	}
	gin.SetMode(gin.ReleaseMode)
	router := newRouter(n.service, cfg.API.AdminToken)
	log.Info().Str("listen", listen).Msg("starting web api")
	if err := router.Run(listen); err != nil {
		log.Fatal().Err(err).Msg("web api stopped")
	}
}

func init() {
	rootCmd.AddCommand(webAPICmd)
	webAPICmd.Flags().StringVar(&fListen, "listen", "0.0.0.0:8010", "address to listen on, overrides the config")
}
