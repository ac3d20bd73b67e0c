package server

import (
	"fmt"
)

const HTTP_SUCCESS = 200
const HTTP_BAD_REQUEST = 400
const HTTP_NOT_FOUND = 404
const HTTP_TIMEOUT = 408
const HTTP_SERVER_ERR = 503

type ResponseCode int

const (
	FIXTURE_READY ResponseCode = iota
	FIXTURE_NOT_FOUND
	FIXTURE_INVALIDE
	FIXTURE_BROKEN
)

func (h ResponseCode) ToHttp() int {
	switch h {
	case FIXTURE_READY:
		return HTTP_SUCCESS
	case FIXTURE_NOT_FOUND:
		return HTTP_NOT_FOUND
	case FIXTURE_INVALIDE:
		return HTTP_BAD_REQUEST
	case FIXTURE_BROKEN:
		return HTTP_SERVER_ERR
	default:
		panic(h)
	}
}

func (h ResponseCode) Name() string {
	switch h {
	case FIXTURE_READY:
		return "READY"
	case FIXTURE_NOT_FOUND:
		return "NOT_FOUND"
	case FIXTURE_INVALIDE:
		return "INVALIDE"
	case FIXTURE_BROKEN:
		return "BROKEN"
	default:
		return fmt.Sprintf("n/a:%d", h)
	}
}

func (k RequestKind) Name() string {
	switch k {
	case REQ_GENERATE:
		return "GENERATE"
	case REQ_GENERATE_SYMMETRIC:
		return "GENERATE_SYMMETRIC"
	case REQ_SOLVE:
		return "SOLVE"
	case REQ_RACE:
		return "RACE"
	default:
		return "N/A"
	}
}
