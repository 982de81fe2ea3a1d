package rfm

import (
	"errors"
	"fmt"
)

// Kind identifica a etapa do pipeline que falhou
type Kind string

const (
	KindLoad     Kind = "load"
	KindCleaning Kind = "cleaning"
	KindRecency  Kind = "recency"
	KindJoin     Kind = "join"
)

// Erros base de cada etapa, usados com errors.Is
var (
	ErrLoad     = errors.New("unable to load transactions file")
	ErrCleaning = errors.New("no transaction left after cleaning")
	ErrRecency  = errors.New("no parseable invoice date")
	ErrJoin     = errors.New("metric tables share no customer")
)

var sentinels = map[Kind]error{
	KindLoad:     ErrLoad,
	KindCleaning: ErrCleaning,
	KindRecency:  ErrRecency,
	KindJoin:     ErrJoin,
}

// Error é a falha estruturada (tipo + mensagem) devolvida pelo pipeline
type Error struct {
	Kind    Kind   // Etapa que falhou
	Details string // Detalhes adicionais
	Err     error  // Causa (opcional)
}

// Error implementa a interface error
func (e *Error) Error() string {
	msg := sentinels[e.Kind].Error()
	if e.Details != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Details)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap expõe o erro base da etapa e a causa
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{sentinels[e.Kind]}
	}
	return []error{sentinels[e.Kind], e.Err}
}

func newError(kind Kind, err error, format string, args ...any) *Error {
	return &Error{
		Kind:    kind,
		Details: fmt.Sprintf(format, args...),
		Err:     err,
	}
}

// KindOf retorna o tipo de um erro do pipeline, ou "" se não for um
func KindOf(err error) Kind {
	var rfmErr *Error
	if errors.As(err, &rfmErr) {
		return rfmErr.Kind
	}
	return ""
}
