package context

type Key string

const (
	Claims Key = "claims"
	Org    Key = "org"
	Params Key = "params"
)
