package icon

// Providers known to the catalog.
const (
	ProviderAWS     = "aws"
	ProviderOnPrem  = "onprem"
	ProviderGeneric = "generic"
	ProviderCustom  = "custom"
)

var (
	// EC2 is an AWS compute instance.
	EC2 = Icon{Provider: ProviderAWS, Category: "compute", Kind: "ec2", Shape: "box3d", FillColor: "#F58536"}

	// Lambda is an AWS serverless function.
	Lambda = Icon{Provider: ProviderAWS, Category: "compute", Kind: "lambda", Shape: "component", FillColor: "#F58536"}

	// RDS is an AWS managed relational database.
	RDS = Icon{Provider: ProviderAWS, Category: "database", Kind: "rds", Shape: "cylinder", FillColor: "#3B48CC"}

	// S3 is AWS object storage.
	S3 = Icon{Provider: ProviderAWS, Category: "storage", Kind: "s3", Shape: "folder", FillColor: "#7AA116"}

	// Server is a generic on-premises machine.
	Server = Icon{Provider: ProviderOnPrem, Category: "compute", Kind: "server", Shape: "box3d", FillColor: "#D5DBDB"}

	// PostgreSQL is a PostgreSQL database.
	PostgreSQL = Icon{Provider: ProviderOnPrem, Category: "database", Kind: "postgresql", Shape: "cylinder", FillColor: "#336791"}

	// Redis is a Redis in-memory store.
	Redis = Icon{Provider: ProviderOnPrem, Category: "inmemory", Kind: "redis", Shape: "cylinder", FillColor: "#D82C20"}

	// NATS is a NATS message broker.
	NATS = Icon{Provider: ProviderOnPrem, Category: "queue", Kind: "nats", Shape: "cds", FillColor: "#27AAE1"}

	// Nginx is an Nginx proxy.
	Nginx = Icon{Provider: ProviderOnPrem, Category: "network", Kind: "nginx", Shape: "hexagon", FillColor: "#009639"}

	// Client is an end-user device.
	Client = Icon{Provider: ProviderOnPrem, Category: "client", Kind: "client", Shape: "tab", FillColor: "#ECF0F1"}

	// Blank draws a plain box.
	Blank = Icon{Provider: ProviderGeneric, Category: "blank", Kind: "blank", Shape: "box", FillColor: "#FFFFFF"}
)

var catalog = func() map[string]Icon {
	m := make(map[string]Icon)
	for _, i := range []Icon{EC2, Lambda, RDS, S3, Server, PostgreSQL, Redis, NATS, Nginx, Client, Blank} {
		m[i.Ref()] = i
	}
	return m
}()
