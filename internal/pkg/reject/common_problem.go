package reject

import (
	"net/http"

	"github.com/rs/zerolog/log"
)

const (
	genericUnexpectedError string = "error.generic.unexpected"
	cannotParseParams      string = "error.generic.cannot-parse-params"
	invalidRequest         string = "error.generic.invalid-request-payload"
	cannotParseBody        string = "error.generic.cannot-parse-payload"
	genericNotFound        string = "error.generic.not-found"
	chainUnavailable       string = "error.chain.unavailable"
)

func RequestValidationProblem() Problem {
	return NewProblem().
		WithTitle("Invalid request payload").
		WithStatus(http.StatusBadRequest).
		WithCode(invalidRequest).
		Build()
}

func RequestParamsProblem() Problem {
	return NewProblem().
		WithTitle("Invalid request parameters").
		WithStatus(http.StatusBadRequest).
		WithCode(cannotParseParams).
		Build()
}

func BodyParseProblem() Problem {
	return NewProblem().
		WithTitle("Cannot read payload").
		WithStatus(http.StatusBadRequest).
		WithCode(cannotParseBody).
		Build()
}

func NotFoundProblem() Problem {
	return NewProblem().
		WithTitle("Record not found").
		WithStatus(http.StatusNotFound).
		WithCode(genericNotFound).
		Build()
}

func UnexpectedProblem(err error) Problem {
	log.Warn().Err(err).Msg("Unexpected error while handling request")
	return NewProblem().
		WithTitle("Unexpected error").
		WithStatus(http.StatusInternalServerError).
		WithCode(genericUnexpectedError).
		Build()
}

// ChainProblem is returned when a contract read or a transaction submission fails.
func ChainProblem(err error) *ProblemWithTrace {
	log.Warn().Err(err).Msg("Chain call failed")
	return &ProblemWithTrace{
		Problem: NewProblem().
			WithTitle("Blockchain request failed").
			WithStatus(http.StatusBadGateway).
			WithCode(chainUnavailable).
			WithDetail(err.Error()).
			Build(),
		Cause: err,
	}
}

// Conflict builds a 409 problem with the given code, e.g. a join already in progress.
func Conflict(title string, code string, err error) *ProblemWithTrace {
	return &ProblemWithTrace{
		Problem: NewProblem().
			WithTitle(title).
			WithStatus(http.StatusConflict).
			WithCode(code).
			Build(),
		Cause: err,
	}
}

// Precondition builds a 412 problem, used when an NFT approval or ownership is missing.
func Precondition(title string, code string, err error) *ProblemWithTrace {
	return &ProblemWithTrace{
		Problem: NewProblem().
			WithTitle(title).
			WithStatus(http.StatusPreconditionFailed).
			WithCode(code).
			Build(),
		Cause: err,
	}
}

// Forbidden builds a 403 problem, used when the signer cannot act for the requested player.
func Forbidden(title string, code string, err error) *ProblemWithTrace {
	return &ProblemWithTrace{
		Problem: NewProblem().
			WithTitle(title).
			WithStatus(http.StatusForbidden).
			WithCode(code).
			Build(),
		Cause: err,
	}
}
