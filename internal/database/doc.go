// Copyright (c) Medidash Authors.
// Licensed under the MIT License.

/*
包 database 负责打开 user_roles 所在的数据库，并提供基于 GORM 的
连接池管理与健康检查。

# 核心类型

  - PoolManager：持有 GORM DB 与底层 sql.DB，提供 DB()、Ping()、
    Stats()、Close()；StartHealthCheck 定时探活并把统计交给观察者。
  - PoolConfig：最大空闲/打开连接数、生命周期与健康检查间隔。

# 驱动

Open 根据 config.DatabaseConfig.Driver 选择 postgres（Supabase）、
mysql 或 sqlite 方言；驱动为空时返回 ErrDisabled，角色接口随之关闭。
*/
package database
