// Package config loads runtime configuration for the Crux CLI.
//
// Sources, later ones winning:
//
//  1. Built-in defaults (see (*Config).LoadDefaults): the local provider and
//     SQLite files in the working directory.
//  2. Optional JSON file named by -c or -config.
//  3. CRUX_* environment variables. main loads a .env file first.
//  4. Flags -p, -d, -l, -r.
//
// # JSON schema
//
//	{
//	  "provider": "cognito",
//	  "aws_region": "eu-west-1",
//	  "cognito_user_pool_id": "eu-west-1_AbCdEf",
//	  "cognito_client_id": "1h2g3f4e5d",
//	  "vault_db": "crux.db",
//	  "resend_cooldown": "29s"
//	}
package config
