package controllers

type firstDifferingLevelRequest struct {
	U int64 `json:"u" validate:"min=0,max=4294967294"`
	V int64 `json:"v" validate:"min=0,max=4294967294,nefield=U"`
}

type firstDifferingLevelResponse struct {
	U      int64 `json:"u"`
	V      int64 `json:"v"`
	Level  int   `json:"level"`
	Differ bool  `json:"differ"`
}

func NewFirstDifferingLevelResponse(u, v int64, level int, differ bool) firstDifferingLevelResponse {
	if !differ {
		level = -1
	}
	return firstDifferingLevelResponse{
		U:      u,
		V:      v,
		Level:  level,
		Differ: differ,
	}
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}
