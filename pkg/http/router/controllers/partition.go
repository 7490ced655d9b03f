package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"
	da "github.com/lintang-b-s/roadbisect/pkg/datastructure"
	helper "github.com/lintang-b-s/roadbisect/pkg/http/router/routerhelper"
	"github.com/lintang-b-s/roadbisect/pkg/util"
	"go.uber.org/zap"
)

type partitionAPI struct {
	partitionService PartitionService
	log              *zap.Logger
}

func New(partitionService PartitionService, log *zap.Logger) *partitionAPI {
	return &partitionAPI{
		partitionService: partitionService,
		log:              log,
	}
}

func (api *partitionAPI) Routes(group *helper.RouteGroup) {
	group.GET("/partition", api.summary)
	group.GET("/cells/:node", api.nodeCells)
	group.GET("/levels/:level", api.levelCells)
	group.GET("/firstDifferingLevel", api.firstDifferingLevel)
}

func (api *partitionAPI) summary(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	if err := api.writeJSON(w, http.StatusOK, envelope{"data": api.partitionService.Summary()}, nil); err != nil {
		api.ServerErrorResponse(w, r, err)
	}
}

func (api *partitionAPI) nodeCells(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	node, err := da.ParseIndex(p.ByName("node"))
	if err != nil {
		api.BadRequestResponse(w, r, errors.New("node must be a valid non-negative integer"))
		return
	}

	cells, err := api.partitionService.NodeCells(node)
	if err != nil {
		api.getStatusCode(w, r, err)
		return
	}

	if err := api.writeJSON(w, http.StatusOK, envelope{"data": cells}, nil); err != nil {
		api.ServerErrorResponse(w, r, err)
	}
}

func (api *partitionAPI) levelCells(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	level, err := strconv.Atoi(p.ByName("level"))
	if err != nil {
		api.BadRequestResponse(w, r, errors.New("level must be a valid integer"))
		return
	}

	cells, err := api.partitionService.LevelCells(level)
	if err != nil {
		api.getStatusCode(w, r, err)
		return
	}

	if err := api.writeJSON(w, http.StatusOK, envelope{"data": cells}, nil); err != nil {
		api.ServerErrorResponse(w, r, err)
	}
}

func (api *partitionAPI) firstDifferingLevel(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	var (
		request firstDifferingLevelRequest
		err     error
	)

	query := r.URL.Query()

	request.U, err = strconv.ParseInt(query.Get("u"), 10, 64)
	if err != nil {
		api.BadRequestResponse(w, r, errors.New("u is required and must be a valid int"))
		return
	}
	request.V, err = strconv.ParseInt(query.Get("v"), 10, 64)
	if err != nil {
		api.BadRequestResponse(w, r, errors.New("v is required and must be a valid int"))
		return
	}

	validate, trans := util.NewValidator()
	if err := validate.Struct(request); err != nil {
		vv := util.TranslateError(err, trans)
		vvString := []string{}
		for _, v := range vv {
			vvString = append(vvString, v.Error())
		}
		api.BadRequestResponse(w, r, fmt.Errorf("validation error: %v", vvString))
		return
	}

	level, differ, err := api.partitionService.FirstDifferingLevel(da.Index(request.U), da.Index(request.V))
	if err != nil {
		api.getStatusCode(w, r, err)
		return
	}

	if err := api.writeJSON(w, http.StatusOK, envelope{"data": NewFirstDifferingLevelResponse(request.U, request.V,
		level, differ)}, nil); err != nil {
		api.ServerErrorResponse(w, r, err)
	}
}
