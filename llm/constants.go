package llm

const (
	// ExcerptLimit bounds how much offending content an error carries.
	ExcerptLimit = 500

	codeFence = "```"
)
