package spec

type TransformerSpec struct {
	Name      string   `yaml:"name"`
	Type      string   `yaml:"type"`    // "grpc" or "stdio"
	Address   string   `yaml:"address"` // e.g. "localhost:50051"
	Command   []string `yaml:"command"` // argv for stdio rewriters
	TimeoutMS int      `yaml:"timeout_ms"`

	RetryPolicy struct {
		Attempts  int `yaml:"attempts"`
		BackoffMS int `yaml:"backoff_ms"`
	} `yaml:"retry_policy"`
}

type ResourceSpec struct {
	Name string `yaml:"name"` // entry name in the destination
	File string `yaml:"file"`
}

type File struct {
	SchemaVersion string `yaml:"schema_version"`

	// Ordered source archives; entries are concatenated in this order.
	Sources     []string `yaml:"sources"`
	Destination string   `yaml:"destination"`
	// Replace swaps the single source with the result and keeps the
	// original next to it as notransform-<name>.
	Replace bool `yaml:"replace"`

	Suffix           string   `yaml:"suffix"`
	Classpath        []string `yaml:"classpath"`
	Include          []string `yaml:"include"`
	Exclude          []string `yaml:"exclude"`
	CompressionLevel int      `yaml:"compression_level"`

	// Ordered transformer chain.
	Transformers []TransformerSpec `yaml:"transformers"`

	Resources struct {
		Pre  []ResourceSpec `yaml:"pre"`
		Post []ResourceSpec `yaml:"post"`
	} `yaml:"resources"`

	Report struct {
		Sinks  []string `yaml:"sinks"`
		Stdout struct {
			Format string `yaml:"format"` // text|yaml
		} `yaml:"stdout"`
		Kafka string `yaml:"kafka"` // path to the kafka sink config
	} `yaml:"report"`

	Metrics struct {
		Textfile string `yaml:"textfile"`
	} `yaml:"metrics"`
}
