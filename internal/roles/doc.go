// Copyright (c) Medidash Authors.
// Licensed under the MIT License.

/*
包 roles 实现用户角色分配：按邮箱在 Supabase 目录中解析用户，
检查 (user_id, role) 是否已存在，写入 user_roles 表并发布 role.assigned 事件。

# 核心类型

  - Role：admin、moderator、user 三种角色。
  - Assignment：user_roles 表的 GORM 模型。
  - Store：基于 GORM 的读写，重复键映射为 ErrAlreadyAssigned。
  - Service：Assign、ListForEmail、IsAdmin，错误统一为 *types.Error。

唯一性由两层保证：写入前的存在性检查，以及表上的唯一索引。
两个并发请求同时通过检查时，后写入者由唯一索引拒绝并得到相同的 400 响应。
*/
package roles
