package server

type Filters struct {
	FilterRoot   string `form:"root"`
	FilterPath   string `form:"path"`
	FilterStatus string `form:"status"`
}

type ListParams struct {
	GridParams
	Filters
}

type BlameParams struct {
	Root string `form:"root" binding:"required"`
	Path string `form:"path" binding:"required"`
}
