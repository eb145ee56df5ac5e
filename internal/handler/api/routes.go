package api

import "github.com/labstack/echo/v4"

// Routes bundles the API handlers into one route registrar.
type Routes struct {
	ttv      *TTVHandler
	progress *ProgressHandler
}

func NewRoutes(ttv *TTVHandler, progress *ProgressHandler) *Routes {
	return &Routes{ttv: ttv, progress: progress}
}

func (r *Routes) RegisterRoutes(e *echo.Echo) {
	r.ttv.RegisterRoutes(e)
	r.progress.RegisterRoutes(e)
}
