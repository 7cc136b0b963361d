package api

import "github.com/gin-gonic/gin"

// Controller registers handlers on a group. The plain verbs require a logged-in
// user; the PUBLIC_ variants do not and are meant for unauthenticated groups.
type Controller struct {
	Group *gin.RouterGroup
}

func (c *Controller) GET(path string, h HandlerFuncWithAuth, mw ...gin.HandlerFunc) {
	c.Group.GET(path, append(mw, ResolveEndpointWithAuth(h))...)
}

func (c *Controller) POST(path string, h HandlerFuncWithAuth, mw ...gin.HandlerFunc) {
	c.Group.POST(path, append(mw, ResolveEndpointWithAuth(h))...)
}

func (c *Controller) PUT(path string, h HandlerFuncWithAuth, mw ...gin.HandlerFunc) {
	c.Group.PUT(path, append(mw, ResolveEndpointWithAuth(h))...)
}

func (c *Controller) DELETE(path string, h HandlerFuncWithAuth, mw ...gin.HandlerFunc) {
	c.Group.DELETE(path, append(mw, ResolveEndpointWithAuth(h))...)
}

func (c *Controller) PUBLIC_GET(path string, h HandlerFunc, mw ...gin.HandlerFunc) {
	c.Group.GET(path, append(mw, ResolveEndpoint(h))...)
}

func (c *Controller) PUBLIC_POST(path string, h HandlerFunc, mw ...gin.HandlerFunc) {
	c.Group.POST(path, append(mw, ResolveEndpoint(h))...)
}

// RAW registers a handler that writes its own response, e.g. a websocket upgrade.
func (c *Controller) RAW(method, path string, handlers ...gin.HandlerFunc) {
	c.Group.Handle(method, path, handlers...)
}
