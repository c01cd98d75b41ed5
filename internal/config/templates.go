package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const configTemplate = `# Trading Console Configuration

# Instruments listed in the market. Prices are in INR and are fixed for the
# session.
[[market.instruments]]
symbol = "TCS"
name = "Tata Consultancy Services"
price = "3650.00"

[[market.instruments]]
symbol = "INFY"
name = "Infosys Ltd"
price = "1490.00"

[[market.instruments]]
symbol = "RELI"
name = "Reliance Industries"
price = "2825.00"

[[market.instruments]]
symbol = "HDFC"
name = "HDFC Bank"
price = "1695.00"

[[market.instruments]]
symbol = "ITC"
name = "ITC Limited"
price = "450.00"

[portfolio]
# Keep fully sold positions (quantity 0) in the portfolio view
retain_closed_positions = true
# Report an error when a held symbol is missing from the market
strict_valuation = false

[ui]
# Enable colored output
color_enabled = true

[logging]
# Log level: debug, info, warn, error
level = "info"
# Log to stderr
console = true
# Log to a rotating file
file = true
# max_size in megabytes, max_age in days
max_size = 10
max_backups = 7
max_age = 30

[journal]
# Record executed trades in a SQLite journal for later review.
# The portfolio is never restored from it.
enabled = false
`

func createTemplateConfig(configDir, name string) error {
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	path := filepath.Join(configDir, name+".toml")
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	if err := os.WriteFile(path, []byte(configTemplate), 0600); err != nil {
		return fmt.Errorf("writing config template: %w", err)
	}

	return nil
}
