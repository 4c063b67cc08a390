package inventory

// Config of the projection store.
type Config struct {
	// DBPath path of the sqlite projection database
	DBPath string `mapstructure:"DBPath"`
}
