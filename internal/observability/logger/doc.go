// Package logger provee un logger Zap singleton con scoping por contexto.
//
// Decisiones:
//
//   - Singleton: una sola instancia global inicializada con Init().
//   - Context scoping: cada request puede llevar su propio logger con
//     campos adicionales (request_id, guild_id, user_id) sin crear un
//     core nuevo.
//   - Entornos: "dev" usa consola con colores, "prod" usa JSON.
//
// Inicialización (una vez en main.go):
//
//	logger.Init(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level})
//	defer logger.Sync()
//
// En handlers/services (con contexto):
//
//	logger.From(ctx).Info("config updated", logger.GuildID(id.String()))
package logger
