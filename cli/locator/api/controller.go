package api

import "github.com/gin-gonic/gin"

type Controller struct {
	Handler *Handler
	router  *gin.Engine
}

func NewController(handler *Handler) *Controller {
	router := gin.New()
	router.Use(gin.Recovery(), RequestID())

	v1 := router.Group("/api/v1")
	{
		v1.GET("/status", handler.GetStatus)

		namespace := v1.Group("/:namespace")
		{
			namespace.GET("/positions", handler.GetPositions)
			namespace.POST("/positions/batch", handler.BatchPositions)
			namespace.GET("/positions/:id", handler.GetPosition)
			namespace.GET("/positions/:id/exists", handler.GetExists)
		}
	}

	return &Controller{Handler: handler, router: router}
}

func (c *Controller) Run(addr string) error {
	return c.router.Run(addr)
}

// Router exposes the engine for tests.
func (c *Controller) Router() *gin.Engine {
	return c.router
}
