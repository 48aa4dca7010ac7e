package server

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/pescuma/hgblame/lib/consoles"
	"github.com/pescuma/hgblame/lib/storages"
)

type Options struct {
	Port uint
}

func Run(console consoles.Console, storage storages.Storage, opts *Options) error {
	s := newServer(storage, opts)

	console.Printf("Starting server on port %v...\n", s.opts.Port)

	return s.run()
}

type server struct {
	opts    *Options
	storage storages.Storage
}

func newServer(storage storages.Storage, opts *Options) *server {
	if opts == nil {
		opts = &Options{}
	}
	if opts.Port == 0 {
		opts.Port = 2724
	}

	return &server{
		opts:    opts,
		storage: storage,
	}
}

func (s *server) run() error {
	gin.SetMode(gin.ReleaseMode)

	return s.routes().Run(fmt.Sprintf(":%v", s.opts.Port))
}

func (s *server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	s.initFiles(r)
	s.initStats(r)

	return r
}
